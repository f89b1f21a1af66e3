package changes

import (
	"context"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/aarav-aiphi/Backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository persists pending changes. Changes are never deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, change *models.PendingChange) error
	CreateMany(ctx context.Context, changes []*models.PendingChange) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PendingChange, error)
	MarkResolved(ctx context.Context, id uuid.UUID, resolution resolvedFields) (bool, error)
	List(ctx context.Context, params listParams) ([]models.PendingChange, error)
	PendingTempKeys(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pending change repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type resolvedFields struct {
	Status          enums.ChangeStatus
	ReviewedBy      uuid.UUID
	ReviewedAt      time.Time
	RejectionReason *string
}

type listParams struct {
	Status      *enums.ChangeStatus
	RequestedBy *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, change *models.PendingChange) error {
	prepare(change)
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *repository) CreateMany(ctx context.Context, changes []*models.PendingChange) error {
	if len(changes) == 0 {
		return nil
	}
	for _, c := range changes {
		prepare(c)
	}
	return r.db.WithContext(ctx).Create(&changes).Error
}

func prepare(change *models.PendingChange) {
	if change.ID == uuid.Nil {
		change.ID = uuid.New()
	}
	if len(change.ProposedData) == 0 {
		change.ProposedData = datatypes.JSON("null")
	}
	change.Status = enums.ChangeStatusPending
	change.ReviewedBy = nil
	change.ReviewedAt = nil
	change.RejectionReason = nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PendingChange, error) {
	var change models.PendingChange
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&change).Error; err != nil {
		return nil, err
	}
	return &change, nil
}

// MarkResolved moves a pending change to a terminal status. It reports false when
// the change is missing or no longer pending.
func (r *repository) MarkResolved(ctx context.Context, id uuid.UUID, resolution resolvedFields) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingChange{}).
		Where("id = ? AND status = ?", id, enums.ChangeStatusPending).
		Updates(map[string]any{
			"status":           resolution.Status,
			"reviewed_by":      resolution.ReviewedBy,
			"reviewed_at":      resolution.ReviewedAt,
			"rejection_reason": resolution.RejectionReason,
			"updated_at":       resolution.ReviewedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) List(ctx context.Context, params listParams) ([]models.PendingChange, error) {
	query := r.db.WithContext(ctx).Model(&models.PendingChange{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.RequestedBy != nil {
		query = query.Where("requested_by = ?", *params.RequestedBy)
	}
	if params.Cursor != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.PendingChange
	err := query.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}

// PendingTempKeys returns every temp object key referenced by a pending change.
func (r *repository) PendingTempKeys(ctx context.Context) ([]string, error) {
	var rows []models.PendingChange
	err := r.db.WithContext(ctx).
		Select("id", "action", "proposed_data").
		Where("status = ? AND action IN ?", enums.ChangeStatusPending,
			[]enums.ChangeAction{enums.ChangeActionCreate, enums.ChangeActionUpdate}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, row := range rows {
		payload, err := DecodePayload(row.Action, row.ProposedData)
		if err != nil {
			continue
		}
		keys = append(keys, tempImagesOf(payload).Keys()...)
	}
	return keys, nil
}
