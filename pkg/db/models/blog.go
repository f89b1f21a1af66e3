package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// BlogImage references an image held by the asset store.
type BlogImage struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// BlogSection is a titled block of a blog post.
type BlogSection struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Images  []BlogImage `json:"images,omitempty"`
}

// Blog is an editorial post.
type Blog struct {
	ID        uuid.UUID                        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string                           `gorm:"column:title;not null"`
	Content   string                           `gorm:"column:content;not null"`
	Tags      pq.StringArray                   `gorm:"column:tags;type:text[]"`
	Category  string                           `gorm:"column:category;not null"`
	Sections  datatypes.JSONSlice[BlogSection] `gorm:"column:sections"`
	Image     datatypes.JSONType[BlogImage]    `gorm:"column:image"`
	CreatedAt time.Time                        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                        `gorm:"column:updated_at;autoUpdateTime"`
}
