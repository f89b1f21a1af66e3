package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/pkg/enums"
)

// User represents a directory principal.
type User struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email                string         `gorm:"type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash         *string        `gorm:"column:password_hash"`
	GoogleID             *string        `gorm:"column:google_id;uniqueIndex:users_google_id_key"`
	FirstName            string         `gorm:"column:first_name;not null;default:''"`
	LastName             string         `gorm:"column:last_name;not null;default:''"`
	Username             *string        `gorm:"column:username"`
	Phone                *string        `gorm:"column:phone"`
	ProfileImage         *string        `gorm:"column:profile_image"`
	ShortBio             *string        `gorm:"column:short_bio"`
	Role                 enums.UserRole `gorm:"column:role;not null;default:'user'"`
	ResetPasswordToken   *string        `gorm:"column:reset_password_token;index"`
	ResetPasswordExpires *time.Time     `gorm:"column:reset_password_expires"`
	LastLoginAt          *time.Time     `gorm:"column:last_login_at"`
	CreatedAt            time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName returns the username, falling back to the first name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}
