package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/aarav-aiphi/Backend/internal/users"
	"github.com/aarav-aiphi/Backend/pkg/auth/oauth"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"gorm.io/gorm"
)

const googleDisabledMessage = "google sign-in is not configured"

func (s *service) GoogleBegin(ctx context.Context) (string, error) {
	if s.google == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, googleDisabledMessage)
	}
	url, err := s.google.Begin(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start google sign-in")
	}
	return url, nil
}

// GoogleComplete finishes the authorization-code flow. Known Google subjects
// sign straight in; a verified email that matches an existing account links
// it; anything else creates a password-less user.
func (s *service) GoogleComplete(ctx context.Context, state, code string) (*Session, error) {
	if s.google == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, googleDisabledMessage)
	}
	identity, err := s.google.Complete(ctx, state, code)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrInvalidState):
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired sign-in state")
		case errors.Is(err, oauth.ErrMissingEmail):
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google account has no email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete google sign-in")
	}
	if !identity.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google email is not verified")
	}

	user, err := s.resolveGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, loginMessage)
}

func (s *service) resolveGoogleUser(ctx context.Context, identity oauth.Identity) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup google user")
	}

	picture := optional(identity.Picture)
	email := users.NormalizeEmail(identity.Email)
	user, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkGoogle(ctx, user.ID, identity.Subject, picture); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link google account")
		}
		user.GoogleID = &identity.Subject
		if user.ProfileImage == nil {
			user.ProfileImage = picture
		}
		return user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	firstName, lastName := identity.GivenName, identity.Family
	if firstName == "" {
		firstName = strings.TrimSpace(identity.Name)
	}
	subject := identity.Subject
	created, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		GoogleID:     &subject,
		FirstName:    firstName,
		LastName:     lastName,
		ProfileImage: picture,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create google user")
	}
	return created, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
