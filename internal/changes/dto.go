package changes

import (
	"encoding/json"
	"time"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
)

// ChangeDTO is the API shape of a pending change.
type ChangeDTO struct {
	ID              uuid.UUID              `json:"id"`
	Action          enums.ChangeAction     `json:"action"`
	Collection      enums.ChangeCollection `json:"collection"`
	TargetID        *uuid.UUID             `json:"targetId,omitempty"`
	ProposedData    json.RawMessage        `json:"proposedData,omitempty"`
	RequestedBy     uuid.UUID              `json:"requestedBy"`
	Requester       *RequesterDTO          `json:"requester,omitempty"`
	Target          *listings.ListingDTO   `json:"target,omitempty"`
	Status          enums.ChangeStatus     `json:"status"`
	ReviewedBy      *uuid.UUID             `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewedAt,omitempty"`
	RejectionReason *string                `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// RequesterDTO is the public view of the admin who submitted a change.
type RequesterDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// ListResult is a page of changes, latest first.
type ListResult struct {
	Items  []ChangeDTO `json:"items"`
	Cursor string      `json:"cursor,omitempty"`
}

// Receipt acknowledges a submission.
type Receipt struct {
	Message         string    `json:"message"`
	PendingChangeID uuid.UUID `json:"pendingChangeId"`
}

// BulkFailure names a CSV row that was not submitted. Row counts the header as row 1.
type BulkFailure struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BulkResult reports a bulk CSV submission.
type BulkResult struct {
	Message   string        `json:"message"`
	Submitted int           `json:"submitted"`
	Failed    []BulkFailure `json:"failed"`
}

// Resolution is the outcome of resolving a change. Listing is the created,
// updated or removed listing and is only set on approval.
type Resolution struct {
	Message string               `json:"message"`
	Change  ChangeDTO            `json:"change"`
	Listing *listings.ListingDTO `json:"agent,omitempty"`
}

func toDTO(change *models.PendingChange) ChangeDTO {
	dto := ChangeDTO{
		ID:              change.ID,
		Action:          change.Action,
		Collection:      change.Collection,
		TargetID:        change.TargetID,
		RequestedBy:     change.RequestedBy,
		Status:          change.Status,
		ReviewedBy:      change.ReviewedBy,
		ReviewedAt:      change.ReviewedAt,
		RejectionReason: change.RejectionReason,
		CreatedAt:       change.CreatedAt,
		UpdatedAt:       change.UpdatedAt,
	}
	if !isEmptyJSON(change.ProposedData) {
		dto.ProposedData = json.RawMessage(change.ProposedData)
	}
	return dto
}

func requesterDTO(user *models.User) *RequesterDTO {
	if user == nil {
		return nil
	}
	return &RequesterDTO{ID: user.ID, Username: user.DisplayName(), Email: user.Email}
}
