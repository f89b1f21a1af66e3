package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/aarav-aiphi/Backend/internal/users"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/security"
	"gorm.io/gorm"
)

// ProvisionRequest grants a staff role. Password is only used when the
// account does not exist yet.
type ProvisionRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      enums.UserRole
}

// ProvisionService creates or promotes admin and superadmin accounts. It is
// driven from the operator CLI, never from HTTP.
type ProvisionService interface {
	Provision(ctx context.Context, req ProvisionRequest) (*users.UserDTO, error)
}

// ProvisionServiceParams names the dependencies for the provisioning flow.
type ProvisionServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type provisionService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewProvisionService builds the staff provisioning service.
func NewProvisionService(params ProvisionServiceParams) (ProvisionService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &provisionService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *provisionService) Provision(ctx context.Context, req ProvisionRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	var provisioned *users.UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		existing, err := userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if err := tx.WithContext(ctx).Model(existing).UpdateColumn("role", req.Role).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
			}
			existing.Role = req.Role
			provisioned = users.FromModel(existing)
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		firstName := strings.TrimSpace(req.FirstName)
		if firstName == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "first name is required for new accounts")
		}
		if len(req.Password) < 8 {
			return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: &passwordHash,
			FirstName:    firstName,
			LastName:     strings.TrimSpace(req.LastName),
			Role:         req.Role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		provisioned = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return provisioned, nil
}
