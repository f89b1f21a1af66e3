// Package pagination implements keyset pages ordered by (created_at, id)
// descending. Cursors are opaque, URL-safe strings.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Params is a page request. Zero values mean the first page at DefaultLimit.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor identifies the last row of a page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"i"`
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer is the row count to fetch so Trim can tell whether another
// page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	c.CreatedAt = c.CreatedAt.UTC()
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor returns nil for a blank value and ErrInvalidCursor for
// anything EncodeCursor could not have produced.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == uuid.Nil || c.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// Trim cuts rows fetched with LimitWithBuffer back to the page size and
// returns the cursor for the next page, or "" on the last one.
func Trim[T any](rows []T, limit int, cursorOf func(T) Cursor) ([]T, string) {
	size := NormalizeLimit(limit)
	if len(rows) <= size {
		return rows, ""
	}
	rows = rows[:size]
	return rows, EncodeCursor(cursorOf(rows[size-1]))
}
