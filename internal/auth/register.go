package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/aarav-aiphi/Backend/internal/users"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/security"
	"gorm.io/gorm"
)

const emailTakenMessage = "User already exists with this email"

// Signup registers a regular user and signs them in.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "firstName is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: &passwordHash,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issue(ctx, user, signupMessage)
}
