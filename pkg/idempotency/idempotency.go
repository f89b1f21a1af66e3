package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"
)

type claimStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Guard records which queued messages a consumer has already handled.
// Keys look like `az:idempotency:msg:<consumer>:<message_id>`.
type Guard struct {
	store claimStore
	ttl   time.Duration
}

// NewGuard builds a guard whose claims expire after ttl.
func NewGuard(store claimStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

// Claim marks messageID as handled by consumer. It returns false when another
// delivery already claimed it.
func (g *Guard) Claim(ctx context.Context, consumer, messageID string) (bool, error) {
	key, err := g.key(consumer, messageID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, key, "1", g.ttl)
}

// Release drops a claim so a redelivery can retry the message.
func (g *Guard) Release(ctx context.Context, consumer, messageID string) error {
	key, err := g.key(consumer, messageID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(consumer, messageID string) (string, error) {
	consumer = strings.TrimSpace(consumer)
	messageID = strings.TrimSpace(messageID)
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if messageID == "" {
		return "", errors.New("message id is required")
	}
	return g.store.IdempotencyKey("msg:"+consumer, messageID), nil
}
