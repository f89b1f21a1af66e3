package users

import (
	"context"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists accounts. Lookups return gorm.ErrRecordNotFound when
// nothing matches.
type Repository struct {
	db *gorm.DB
}

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

func (r *Repository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(columns).Error
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByGoogleID loads the user linked to a Google subject.
func (r *Repository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.first(ctx, "google_id = ?", googleID)
}

// FindByResetToken loads the user holding an unexpired reset token digest.
func (r *Repository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	return r.first(ctx, "reset_password_token = ? AND reset_password_expires > ?", digest, now)
}

// FindByIDs loads every user in ids. Unknown ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	rows := []models.User{}
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LinkGoogle attaches a Google subject to an existing account. The profile
// image is only filled when the account has none.
func (r *Repository) LinkGoogle(ctx context.Context, id uuid.UUID, googleID string, picture *string) error {
	columns := map[string]any{"google_id": googleID}
	if picture != nil {
		columns["profile_image"] = gorm.Expr("COALESCE(profile_image, ?)", *picture)
	}
	return r.update(ctx, id, columns)
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, map[string]any{"last_login_at": at})
}

// SetResetToken stores the digest of a password reset token.
func (r *Repository) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expires time.Time) error {
	return r.update(ctx, id, map[string]any{
		"reset_password_token":   digest,
		"reset_password_expires": expires,
	})
}

// UpdatePassword replaces the hash and burns any outstanding reset token.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, map[string]any{
		"password_hash":          passwordHash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
		"updated_at":             time.Now().UTC(),
	})
}
