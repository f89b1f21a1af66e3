package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	claimed     map[string]bool
	setNXError  error
	lastTTL     time.Duration
	lastDeleted string
}

func newFakeStore() *fakeStore {
	return &fakeStore{claimed: map[string]bool{}}
}

func (f *fakeStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if f.setNXError != nil {
		return false, f.setNXError
	}
	f.lastTTL = ttl
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "az:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.claimed, k)
		f.lastDeleted = k
	}
	return nil
}

func TestClaimOnlyOnce(t *testing.T) {
	store := newFakeStore()
	guard, err := NewGuard(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	ctx := context.Background()

	first, err := guard.Claim(ctx, "mail-delivery", "msg-1")
	if err != nil || !first {
		t.Fatalf("expected first claim to succeed, got %v %v", first, err)
	}
	if store.lastTTL != 24*time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", store.lastTTL)
	}
	second, err := guard.Claim(ctx, "mail-delivery", "msg-1")
	if err != nil || second {
		t.Fatalf("expected duplicate claim to be refused, got %v %v", second, err)
	}
	other, _ := guard.Claim(ctx, "other-consumer", "msg-1")
	if !other {
		t.Fatal("claims must be scoped per consumer")
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	store := newFakeStore()
	guard, _ := NewGuard(store, time.Hour)
	ctx := context.Background()

	if _, err := guard.Claim(ctx, "mail-delivery", "msg-2"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := guard.Release(ctx, "mail-delivery", "msg-2"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.lastDeleted != "az:idempotency:msg:mail-delivery:msg-2" {
		t.Fatalf("unexpected deleted key %q", store.lastDeleted)
	}
	again, _ := guard.Claim(ctx, "mail-delivery", "msg-2")
	if !again {
		t.Fatal("expected claim after release")
	}
}

func TestClaimErrors(t *testing.T) {
	store := newFakeStore()
	store.setNXError = errors.New("redis down")
	guard, _ := NewGuard(store, time.Hour)

	if _, err := guard.Claim(context.Background(), "mail-delivery", "m"); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := guard.Claim(context.Background(), "", "m"); err == nil {
		t.Fatal("expected missing consumer error")
	}
	if _, err := guard.Claim(context.Background(), "c", " "); err == nil {
		t.Fatal("expected missing message id error")
	}
	if _, err := NewGuard(nil, time.Hour); err == nil {
		t.Fatal("expected nil store error")
	}
}
