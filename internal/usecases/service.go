package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	msgNameRequired = "Use case name is required"
	msgExists       = "Use case already exists"
	msgCreated      = "Use case created successfully"
)

type UseCaseDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Name string `json:"name"`
}

type CreateResult struct {
	Message string      `json:"message"`
	UseCase *UseCaseDTO `json:"useCase"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.UseCase, error) {
	var rows []models.UseCase
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByName(ctx context.Context, name string) (*models.UseCase, error) {
	var row models.UseCase
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.UseCase) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// Service maintains the curated use-case vocabulary.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("use case repo is required")
	}
	return &Service{repo: repo}, nil
}

func (s *Service) List(ctx context.Context) ([]UseCaseDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to fetch use cases")
	}
	out := make([]UseCaseDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Create adds a use case. Duplicates are a validation failure, not a conflict.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgNameRequired)
	}
	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup use case")
	}

	row := &models.UseCase{Name: name}
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgExists)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create use case")
	}
	dto := toDTO(*row)
	return &CreateResult{Message: msgCreated, UseCase: &dto}, nil
}

func toDTO(row models.UseCase) UseCaseDTO {
	return UseCaseDTO{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
}
