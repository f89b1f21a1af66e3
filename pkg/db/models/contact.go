package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Message   string    `gorm:"column:message;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:subscribers_email_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// UseCase is a curated use-case label.
type UseCase struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:use_cases_name_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
