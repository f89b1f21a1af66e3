package contacts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const receivedMessage = "Your message has been received. We will contact you shortly."

// SubmitRequest is the public contact form.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Receipt acknowledges a stored message.
type Receipt struct {
	Message string      `json:"message"`
	Contact *ContactDTO `json:"contact"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(contact).Error
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repo is required")
	}
	return &Service{repo: repo}, nil
}

// Submit stores a contact form message.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	contact := &models.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if contact.Name == "" || contact.Email == "" || contact.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "All fields are required")
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store contact message")
	}
	return &Receipt{
		Message: receivedMessage,
		Contact: &ContactDTO{
			ID:        contact.ID,
			Name:      contact.Name,
			Email:     contact.Email,
			Message:   contact.Message,
			CreatedAt: contact.CreatedAt,
		},
	}, nil
}
