package wishlist

import (
	"time"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
)

// Kind selects which per-user collection a toggle touches.
type Kind string

const (
	KindWishlist Kind = "wishlist"
	KindLike     Kind = "like"
)

func (k Kind) table() string {
	if k == KindLike {
		return "listing_likes"
	}
	return "wishlist_items"
}

func (k Kind) counters(delta int) listings.Counters {
	if k == KindLike {
		return listings.Counters{Likes: delta}
	}
	return listings.Counters{SavedBy: delta}
}

func (k Kind) event(active bool) enums.EngagementEventType {
	switch {
	case k == KindLike && active:
		return enums.EngagementLiked
	case k == KindLike:
		return enums.EngagementUnliked
	case active:
		return enums.EngagementSaved
	default:
		return enums.EngagementUnsaved
	}
}

func (k Kind) message(active bool) string {
	switch {
	case k == KindLike && active:
		return "Like Added"
	case k == KindLike:
		return "Like Removed"
	case active:
		return "Agent added to wishlist"
	default:
		return "Agent removed from wishlist"
	}
}

// ToggleResult reports the state after a toggle along with the refreshed
// listing counters.
type ToggleResult struct {
	Message string               `json:"message"`
	Active  bool                 `json:"active"`
	Listing *listings.ListingDTO `json:"agent"`
}

// PageDTO is one cursor page of saved or liked listings, newest first.
type PageDTO struct {
	Items  []listings.ListingDTO `json:"items"`
	Cursor string                `json:"cursor,omitempty"`
}

type entryRecord struct {
	ID        uuid.UUID `gorm:"column:id"`
	ListingID uuid.UUID `gorm:"column:listing_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}
