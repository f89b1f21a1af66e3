package enums

// EngagementEventType classifies user interactions with a listing.
type EngagementEventType string

const (
	EngagementLiked    EngagementEventType = "liked"
	EngagementUnliked  EngagementEventType = "unliked"
	EngagementSaved    EngagementEventType = "saved"
	EngagementUnsaved  EngagementEventType = "unsaved"
	EngagementTried    EngagementEventType = "tried"
	EngagementSearched EngagementEventType = "searched"
)

// String implements fmt.Stringer.
func (e EngagementEventType) String() string {
	return string(e)
}
