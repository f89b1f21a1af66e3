package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// Lock makes a cron cycle exclusive across workers.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)
	LockKey(name string) string
}

// RedisLock is a SETNX lease. The TTL bounds how long a crashed worker can
// block the others.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	owner string
	token string
}

// NewRedisLock builds a lock named name. owner prefixes the lease value so
// the current holder is visible in Redis.
func NewRedisLock(store lockStore, name, owner string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: store.LockKey(name), ttl: ttl, owner: owner}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	if l.owner != "" {
		token = l.owner + "/" + token
	}
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release deletes the lease if this instance still holds it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	defer func() { l.token = "" }()

	if _, err := l.store.DeleteIfEquals(ctx, l.key, l.token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
