// Package engagement streams listing interactions (likes, saves, tries,
// searches) to BigQuery.
package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
)

// Event is one user interaction with the directory.
type Event struct {
	ID         uuid.UUID
	Type       enums.EngagementEventType
	ListingID  *uuid.UUID
	UserID     *uuid.UUID
	Query      string
	Attributes map[string]any
	OccurredAt time.Time
}

// Recorder accepts engagement events. Implementations never block the caller
// on the analytics backend.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Record(context.Context, Event) {}

// Row is the BigQuery shape of an Event.
type Row struct {
	EventID    string                  `bigquery:"event_id"`
	EventType  string                  `bigquery:"event_type"`
	ListingID  cbigquery.NullString    `bigquery:"listing_id"`
	UserID     cbigquery.NullString    `bigquery:"user_id"`
	Query      cbigquery.NullString    `bigquery:"query"`
	Attributes cbigquery.NullJSON      `bigquery:"attributes"`
	OccurredAt cbigquery.NullTimestamp `bigquery:"occurred_at"`
}

// ToRow converts the event, filling a missing id and timestamp.
func (e Event) ToRow() (Row, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	attrs, err := encodeJSON(e.Attributes)
	if err != nil {
		return Row{}, err
	}
	row := Row{
		EventID:    e.ID.String(),
		EventType:  string(e.Type),
		Attributes: attrs,
		OccurredAt: cbigquery.NullTimestamp{Timestamp: e.OccurredAt.UTC(), Valid: true},
	}
	if e.ListingID != nil {
		row.ListingID = cbigquery.NullString{StringVal: e.ListingID.String(), Valid: true}
	}
	if e.UserID != nil {
		row.UserID = cbigquery.NullString{StringVal: e.UserID.String(), Valid: true}
	}
	if e.Query != "" {
		row.Query = cbigquery.NullString{StringVal: e.Query, Valid: true}
	}
	return row, nil
}

func encodeJSON(attrs map[string]any) (cbigquery.NullJSON, error) {
	if len(attrs) == 0 {
		return cbigquery.NullJSON{}, nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return cbigquery.NullJSON{}, fmt.Errorf("marshal attributes: %w", err)
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(raw)}, nil
}
