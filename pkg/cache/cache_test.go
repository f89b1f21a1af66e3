package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) CacheKey(scope, id string) string {
	return scope + ":" + id
}

type article struct {
	Title string `json:"title"`
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	store := newMemoryStore()
	c, err := NewJSON(store, "news")
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	var got []article
	if ok, err := c.Get(ctx, "q=ai", &got); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "q=ai", []article{{Title: "agents"}}, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if store.ttls["news:q=ai"] != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", store.ttls["news:q=ai"])
	}
	if ok, err := c.Get(ctx, "q=ai", &got); !ok || err != nil {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Title != "agents" {
		t.Fatalf("unexpected cached value %+v", got)
	}

	if err := c.Delete(ctx, "q=ai"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := c.Get(ctx, "q=ai", &got); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestJSONRejectsCorruptEntries(t *testing.T) {
	store := newMemoryStore()
	store.data["news:bad"] = "{not json"
	c, _ := NewJSON(store, "news")

	var got []article
	if ok, err := c.Get(context.Background(), "bad", &got); ok || err == nil {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestNewJSONRequiresScope(t *testing.T) {
	if _, err := NewJSON(newMemoryStore(), ""); err == nil {
		t.Fatal("expected error for empty scope")
	}
}
