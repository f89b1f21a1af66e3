package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SearchResultRef is a listing surfaced by a saved search.
type SearchResultRef struct {
	ListingID uuid.UUID `json:"listingId"`
	Name      string    `json:"name"`
}

// SearchHistoryEntry stores one saved query for a user.
type SearchHistoryEntry struct {
	ID        uuid.UUID                            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID                            `gorm:"column:user_id;type:uuid;not null;index"`
	Query     string                               `gorm:"column:query;not null"`
	Results   datatypes.JSONSlice[SearchResultRef] `gorm:"column:results"`
	CreatedAt time.Time                            `gorm:"column:created_at;autoCreateTime"`
}
