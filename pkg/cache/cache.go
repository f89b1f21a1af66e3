package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type keyer interface {
	CacheKey(scope, id string) string
}

// JSON stores JSON-encoded values under a single key scope.
type JSON struct {
	store store
	keys  keyer
	scope string
}

// NewJSON builds a cache scoped to the provided name. The redis client satisfies both store and keyer.
func NewJSON(client interface {
	store
	keyer
}, scope string) (*JSON, error) {
	if client == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if scope == "" {
		return nil, fmt.Errorf("cache scope is required")
	}
	return &JSON{store: client, keys: client, scope: scope}, nil
}

// Get decodes the cached value for id into dest. ok is false on a miss.
func (c *JSON) Get(ctx context.Context, id string, dest any) (bool, error) {
	raw, err := c.store.Get(ctx, c.keys.CacheKey(c.scope, id))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", c.scope, err)
	}
	return true, nil
}

// Set encodes value and stores it for ttl.
func (c *JSON) Set(ctx context.Context, id string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", c.scope, err)
	}
	return c.store.Set(ctx, c.keys.CacheKey(c.scope, id), string(raw), ttl)
}

// Delete drops the cached value for id.
func (c *JSON) Delete(ctx context.Context, id string) error {
	return c.store.Del(ctx, c.keys.CacheKey(c.scope, id))
}
