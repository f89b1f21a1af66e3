package wishlist

import (
	"context"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates the like and wishlist link tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Add inserts a link and ignores duplicates. It reports whether a row was
// inserted.
func (r *Repository) Add(ctx context.Context, kind Kind, userID, listingID uuid.UUID, at time.Time) (bool, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}

	res := r.db.WithContext(ctx).
		Exec(`INSERT INTO `+kind.table()+` (id, user_id, listing_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, listing_id) DO NOTHING`,
			uuid.New(), userID, listingID, at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Remove deletes the link if it exists and reports whether it did.
func (r *Repository) Remove(ctx context.Context, kind Kind, userID, listingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Exec(`DELETE FROM `+kind.table()+` WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Entries returns the links of a user, newest first, with one row of
// look-ahead past limit.
func (r *Repository) Entries(ctx context.Context, kind Kind, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]entryRecord, error) {
	query := r.db.WithContext(ctx).
		Table(kind.table()).
		Select("id", "listing_id", "created_at").
		Where("user_id = ?", userID)

	if cursor != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []entryRecord
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Scan(&records).Error
	return records, err
}
