package changes

import (
	"bytes"
	"encoding/json"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"gorm.io/datatypes"
)

// Payload is the proposed data of a pending change. Each action has exactly one
// payload type.
type Payload interface {
	Action() enums.ChangeAction
	Validate() error
}

// TempImages references images uploaded to the temporary namespace while the
// change awaits review.
type TempImages struct {
	LogoTempURL           string `json:"logoTempUrl,omitempty"`
	LogoTempPublicID      string `json:"logoTempPublicId,omitempty"`
	ThumbnailTempURL      string `json:"thumbnailTempUrl,omitempty"`
	ThumbnailTempPublicID string `json:"thumbnailTempPublicId,omitempty"`
}

// Keys returns the temp object keys still referenced.
func (t TempImages) Keys() []string {
	var keys []string
	if t.LogoTempPublicID != "" {
		keys = append(keys, t.LogoTempPublicID)
	}
	if t.ThumbnailTempPublicID != "" {
		keys = append(keys, t.ThumbnailTempPublicID)
	}
	return keys
}

// CreatePayload proposes a new listing.
type CreatePayload struct {
	listings.Fields
	TempImages
}

func (CreatePayload) Action() enums.ChangeAction { return enums.ChangeActionCreate }

func (p CreatePayload) Validate() error {
	return p.Fields.ValidateCreate()
}

// UpdatePayload proposes a partial update of an existing listing.
type UpdatePayload struct {
	listings.Fields
	TempImages
}

func (UpdatePayload) Action() enums.ChangeAction { return enums.ChangeActionUpdate }

func (p UpdatePayload) Validate() error {
	if p.Fields.IsEmpty() && len(p.TempImages.Keys()) == 0 {
		return fieldError("proposedData", "update must change at least one field")
	}
	return p.Fields.Validate()
}

// StatusChangePayload proposes a lifecycle status for an existing listing.
// Instructions are forwarded to the listing owner when the status is onHold.
type StatusChangePayload struct {
	Status       enums.ListingStatus `json:"status"`
	Instructions string              `json:"instructions,omitempty"`
}

func (StatusChangePayload) Action() enums.ChangeAction { return enums.ChangeActionStatusChange }

func (p StatusChangePayload) Validate() error {
	if !p.Status.IsValid() {
		return fieldError("status", "status must be one of requested, accepted, rejected, onHold")
	}
	return nil
}

// NewStatusChange drops instructions unless the status puts the listing on hold.
func NewStatusChange(status enums.ListingStatus, instructions string) StatusChangePayload {
	p := StatusChangePayload{Status: status}
	if status == enums.ListingStatusOnHold {
		p.Instructions = instructions
	}
	return p
}

// DeletePayload marks a delete. It carries no data.
type DeletePayload struct{}

func (DeletePayload) Action() enums.ChangeAction { return enums.ChangeActionDelete }

func (DeletePayload) Validate() error { return nil }

// EncodePayload serializes p for storage. Deletes store a JSON null.
func EncodePayload(p Payload) (datatypes.JSON, error) {
	if p == nil || p.Action() == enums.ChangeActionDelete {
		return datatypes.JSON("null"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode proposed data")
	}
	return datatypes.JSON(data), nil
}

// DecodePayload parses raw proposed data for action. A delete with data is
// rejected.
func DecodePayload(action enums.ChangeAction, raw []byte) (Payload, error) {
	empty := isEmptyJSON(raw)
	switch action {
	case enums.ChangeActionDelete:
		if !empty {
			return nil, fieldError("proposedData", "delete requests must not carry proposed data")
		}
		return DeletePayload{}, nil
	case enums.ChangeActionCreate:
		var p CreatePayload
		if err := decodeInto(raw, empty, &p); err != nil {
			return nil, err
		}
		return p, nil
	case enums.ChangeActionUpdate:
		var p UpdatePayload
		if err := decodeInto(raw, empty, &p); err != nil {
			return nil, err
		}
		return p, nil
	case enums.ChangeActionStatusChange:
		var p StatusChangePayload
		if err := decodeInto(raw, empty, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fieldError("action", "unsupported action")
	}
}

func decodeInto(raw []byte, empty bool, dst any) error {
	if empty {
		return fieldError("proposedData", "proposedData is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "proposedData is malformed").
			WithDetails(map[string]any{"field": "proposedData"})
	}
	return nil
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func tempImagesOf(p Payload) TempImages {
	switch v := p.(type) {
	case CreatePayload:
		return v.TempImages
	case UpdatePayload:
		return v.TempImages
	default:
		return TempImages{}
	}
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}
