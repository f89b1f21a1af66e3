package blogs

import (
	"context"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists blog posts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every post, latest first.
func (r *Repository) List(ctx context.Context) ([]models.Blog, error) {
	var rows []models.Blog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *Repository) Create(ctx context.Context, blog *models.Blog) error {
	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(blog).Error
}

// Save writes every column of blog.
func (r *Repository) Save(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Save(blog).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
