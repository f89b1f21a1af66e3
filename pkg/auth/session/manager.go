package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	redisclient "github.com/aarav-aiphi/Backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Lookup for revoked or expired sessions.
var ErrNotFound = errors.New("session not found")

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// Record is the server-side half of an access token, keyed by its jti.
type Record struct {
	UserID   uuid.UUID `json:"userId"`
	IssuedAt time.Time `json:"issuedAt"`
}

// AccessSessionChecker is what the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager keeps one Redis record per issued access token so logout can
// invalidate a token before its exp claim.
type Manager struct {
	store store
	ttl   time.Duration
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newManager(client, cfg.Expiration())
}

func newManager(s store, ttl time.Duration) (*Manager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: s, ttl: ttl}, nil
}

// Open stores the record for accessID. It lives exactly as long as the token.
func (m *Manager) Open(ctx context.Context, accessID string, rec Record) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	if rec.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(raw), m.ttl)
}

func (m *Manager) Lookup(ctx context.Context, accessID string) (*Record, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, fmt.Errorf("access id is required")
	}
	raw, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	if errors.Is(err, redislib.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", accessID, err)
	}
	return &rec, nil
}

// HasSession reports whether accessID has not been revoked or expired.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	_, err := m.Lookup(ctx, accessID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	}
	return false, err
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}
