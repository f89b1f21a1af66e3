package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/internal/users"
	pkgAuth "github.com/aarav-aiphi/Backend/pkg/auth"
	"github.com/aarav-aiphi/Backend/pkg/auth/oauth"
	"github.com/aarav-aiphi/Backend/pkg/auth/session"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/aarav-aiphi/Backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	loginMessage              = "Login successful"
	signupMessage             = "User registered successfully"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, accessID string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	GoogleBegin(ctx context.Context) (string, error)
	GoogleComplete(ctx context.Context, state, code string) (*Session, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) error
}

type service struct {
	users       userRepository
	session     sessionManager
	google      identityProvider
	mailer      mailSender
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	frontendURL string
	now         func() time.Time
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogle(ctx context.Context, id uuid.UUID, googleID string, picture *string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, digest string, expires time.Time) error
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID string, rec session.Record) error
	Revoke(ctx context.Context, accessID string) error
}

type identityProvider interface {
	Begin(ctx context.Context) (string, error)
	Complete(ctx context.Context, state, code string) (oauth.Identity, error)
}

type mailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// Google is optional; Google sign-in reports a dependency error without it.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Google         identityProvider
	Mailer         mailSender
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	FrontendURL    string
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if strings.TrimSpace(params.FrontendURL) == "" {
		return nil, fmt.Errorf("frontend url is required")
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		google:      params.Google,
		mailer:      params.Mailer,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		frontendURL: strings.TrimRight(params.FrontendURL, "/"),
		now:         time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, loginMessage)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) CurrentUser(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return users.FromModel(user), nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := users.NormalizeEmail(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	// Accounts created through Google have no password.
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	s.upgradeHash(ctx, user, password)
	return user, nil
}

// upgradeHash re-hashes legacy or outdated hashes once the plaintext is
// known. Failures leave the old hash in place for the next login.
func (s *service) upgradeHash(ctx context.Context, user *models.User, password string) {
	if !security.NeedsRehash(*user.PasswordHash, s.passwordCfg) {
		return
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err == nil {
		user.PasswordHash = &hash
	}
}

// issue records the login and mints an access token bound to a fresh session.
func (s *service) issue(ctx context.Context, user *models.User, message string) (*Session, error) {
	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Open(ctx, accessID, session.Record{UserID: user.ID, IssuedAt: now}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	return &Session{
		Message:     message,
		AccessToken: accessToken,
		ExpiresAt:   now.Add(s.jwtCfg.Expiration()),
		User:        users.FromModel(user),
	}, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}
