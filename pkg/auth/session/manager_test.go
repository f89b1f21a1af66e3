package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func TestManagerOpenLookupRevoke(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	m, err := newManager(store, 30*time.Minute)
	require.NoError(t, err)

	userID := uuid.New()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	accessID := NewAccessID()
	require.NoError(t, m.Open(ctx, accessID, Record{UserID: userID, IssuedAt: issued}))
	assert.Equal(t, 30*time.Minute, store.ttls["sess:"+accessID])

	rec, err := m.Lookup(ctx, accessID)
	require.NoError(t, err)
	assert.Equal(t, userID, rec.UserID)
	assert.True(t, issued.Equal(rec.IssuedAt))

	ok, err := m.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Revoke(ctx, accessID))
	_, err = m.Lookup(ctx, accessID)
	assert.ErrorIs(t, err, ErrNotFound)
	ok, err = m.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerRejectsBlankInput(t *testing.T) {
	ctx := context.Background()
	m, err := newManager(newMemoryStore(), time.Minute)
	require.NoError(t, err)

	assert.Error(t, m.Open(ctx, " ", Record{UserID: uuid.New()}))
	assert.Error(t, m.Open(ctx, "jti", Record{}))
	assert.Error(t, m.Revoke(ctx, ""))
	_, err = m.HasSession(ctx, "")
	assert.Error(t, err)

	_, err = newManager(newMemoryStore(), 0)
	assert.Error(t, err)
}

func TestHasSessionSurfacesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	m, err := newManager(store, time.Minute)
	require.NoError(t, err)

	ok, err := m.HasSession(context.Background(), "jti")
	assert.False(t, ok)
	assert.EqualError(t, err, "connection refused")
}

func TestLookupRejectsCorruptRecord(t *testing.T) {
	store := newMemoryStore()
	store.data["sess:jti"] = "not-json"
	m, err := newManager(store, time.Minute)
	require.NoError(t, err)

	_, err = m.Lookup(context.Background(), "jti")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
