package auth

import (
	"time"

	"github.com/aarav-aiphi/Backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the self-service registration payload. Roles are never
// taken from the request.
type SignupRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password for a reset token.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Session is issued after a successful signup or login. The controller moves
// the access token into the auth cookie.
type Session struct {
	Message     string         `json:"message"`
	AccessToken string         `json:"accessToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	User        *users.UserDTO `json:"user"`
}
