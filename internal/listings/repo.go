package listings

import (
	"context"
	"errors"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Counters holds signed adjustments to the engagement counters of a listing.
type Counters struct {
	TriedBy int
	Likes   int
	SavedBy int
}

// Repository persists listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Listing, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context) ([]models.Listing, error)
	ListByStatus(ctx context.Context, status enums.ListingStatus) ([]models.Listing, error)
	ListAcceptedExcept(ctx context.Context, id uuid.UUID) ([]models.Listing, error)
	Distinct(ctx context.Context, column string) ([]string, error)
	AdjustCounters(ctx context.Context, id uuid.UUID, delta Counters) error
	RecomputePopularity(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if listing.Status == "" {
		listing.Status = enums.ListingStatusRequested
	}
	listing.RefreshPopularity()
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Listing, error) {
	if len(ids) == 0 {
		return []models.Listing{}, nil
	}
	var rows []models.Listing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies columns to the listing, bumps its version and returns the
// stored row. A missing listing yields gorm.ErrRecordNotFound.
func (r *repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Listing, error) {
	updates := make(map[string]any, len(columns)+1)
	for k, v := range columns {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes the listing and returns the row as it was before removal.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return listing, nil
}

func (r *repository) List(ctx context.Context) ([]models.Listing, error) {
	var rows []models.Listing
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ListingStatus) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAcceptedExcept(ctx context.Context, id uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND id <> ?", enums.ListingStatusAccepted, id).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var distinctColumns = map[string]struct{}{
	"category":      {},
	"industry":      {},
	"pricing_model": {},
	"access_model":  {},
}

// Distinct returns the sorted distinct values of a facet column over accepted listings.
func (r *repository) Distinct(ctx context.Context, column string) ([]string, error) {
	if _, ok := distinctColumns[column]; !ok {
		return nil, errors.New("unsupported facet column " + column)
	}
	values := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ?", enums.ListingStatusAccepted).
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// AdjustCounters shifts the engagement counters and rewrites the popularity
// score from the new values in the same statement.
func (r *repository) AdjustCounters(ctx context.Context, id uuid.UUID, delta Counters) error {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"tried_by":       gorm.Expr("tried_by + ?", delta.TriedBy),
			"likes":          gorm.Expr("likes + ?", delta.Likes),
			"saved_by_count": gorm.Expr("saved_by_count + ?", delta.SavedBy),
			"popularity_score": gorm.Expr(
				"(tried_by + ?) + 2 * (likes + ?) + 2 * (saved_by_count + ?)",
				delta.TriedBy, delta.Likes, delta.SavedBy,
			),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecomputePopularity rewrites every stale popularity score and returns how
// many rows changed.
func (r *repository) RecomputePopularity(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("popularity_score <> tried_by + 2 * likes + 2 * saved_by_count").
		UpdateColumn("popularity_score", gorm.Expr("tried_by + 2 * likes + 2 * saved_by_count"))
	return res.RowsAffected, res.Error
}
