package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

type memoryStates struct {
	data map[string]string
}

func (m *memoryStates) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStates) GetDel(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	delete(m.data, key)
	return v, nil
}

func (m *memoryStates) OAuthStateKey(state string) string { return "state:" + state }

func newTestGoogle(states stateStore) *Google {
	return &Google{
		oauth2Config: oauth2.Config{
			ClientID:    "client",
			RedirectURL: "http://localhost/api/users/auth/google/callback",
			Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: "https://accounts.example.com/token"},
			Scopes:      []string{"openid", "email"},
		},
		states:   states,
		stateTTL: time.Minute,
	}
}

func TestBeginStoresState(t *testing.T) {
	states := &memoryStates{data: map[string]string{}}
	g := newTestGoogle(states)

	raw, err := g.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in consent url %s", raw)
	}
	if _, ok := states.data["state:"+state]; !ok {
		t.Fatalf("expected state to be stored")
	}
}

func TestCompleteRejectsUnknownState(t *testing.T) {
	g := newTestGoogle(&memoryStates{data: map[string]string{}})
	if _, err := g.Complete(context.Background(), "missing", "code"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if _, err := g.Complete(context.Background(), "", ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state for blanks, got %v", err)
	}
}

func TestIdentityNormalize(t *testing.T) {
	id, err := Identity{Email: "  Ada@Example.COM ", Name: "Ada Lovelace"}.normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if id.Email != "ada@example.com" || id.GivenName != "Ada" || id.Family != "Lovelace" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if _, err := (Identity{Name: "nobody"}).normalize(); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected missing email error, got %v", err)
	}
}
