package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials and reset tokens.
type UserDTO struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Username     *string        `json:"username,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	ProfileImage *string        `json:"profileImage,omitempty"`
	ShortBio     *string        `json:"shortBio,omitempty"`
	Role         enums.UserRole `json:"role"`
	HasPassword  bool           `json:"hasPassword"`
	GoogleLinked bool           `json:"googleLinked"`
	LastLoginAt  *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash *string
	GoogleID     *string
	FirstName    string
	LastName     string
	Username     *string
	Phone        *string
	ProfileImage *string
	Role         enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		ShortBio:     u.ShortBio,
		Role:         u.Role,
		HasPassword:  u.PasswordHash != nil && *u.PasswordHash != "",
		GoogleLinked: u.GoogleID != nil && *u.GoogleID != "",
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}

	return &models.User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		GoogleID:     c.GoogleID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Username:     c.Username,
		Phone:        c.Phone,
		ProfileImage: c.ProfileImage,
		Role:         role,
	}
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
