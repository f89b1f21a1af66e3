package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/coreos/go-oidc/v3/oidc"
	redislib "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

var (
	// ErrInvalidState is returned when the callback state is unknown or already consumed.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrMissingEmail is returned when the identity provider does not share an email.
	ErrMissingEmail = errors.New("oauth identity has no email")
)

// Identity is the subset of OIDC claims used to sign users in.
type Identity struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Verified  bool   `json:"email_verified"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
	Family    string `json:"family_name"`
	Picture   string `json:"picture"`
}

type stateStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	OAuthStateKey(state string) string
}

// Google drives the authorization-code flow against Google's OIDC issuer.
type Google struct {
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	states       stateStore
	stateTTL     time.Duration
}

// NewGoogle discovers the issuer and prepares the OAuth client.
func NewGoogle(ctx context.Context, cfg config.GoogleOAuthConfig, states stateStore) (*Google, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("google oauth is not configured")
	}
	if states == nil {
		return nil, fmt.Errorf("oauth state store is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Google{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		states:   states,
		stateTTL: ttl,
	}, nil
}

// Begin stores a fresh state value and returns the consent URL.
func (g *Google) Begin(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}
	if err := g.states.Set(ctx, g.states.OAuthStateKey(state), "1", g.stateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return g.oauth2Config.AuthCodeURL(state), nil
}

// Complete validates state, exchanges the code and verifies the ID token.
func (g *Google) Complete(ctx context.Context, state, code string) (Identity, error) {
	if strings.TrimSpace(state) == "" || strings.TrimSpace(code) == "" {
		return Identity{}, ErrInvalidState
	}
	if _, err := g.states.GetDel(ctx, g.states.OAuthStateKey(state)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return Identity{}, ErrInvalidState
		}
		return Identity{}, fmt.Errorf("load oauth state: %w", err)
	}

	token, err := g.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return Identity{}, fmt.Errorf("token response missing id_token")
	}
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var identity Identity
	if err := idToken.Claims(&identity); err != nil {
		return Identity{}, fmt.Errorf("decode id_token claims: %w", err)
	}
	return identity.normalize()
}

func (i Identity) normalize() (Identity, error) {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	if i.Email == "" {
		return Identity{}, ErrMissingEmail
	}
	if i.GivenName == "" && i.Name != "" {
		parts := strings.SplitN(strings.TrimSpace(i.Name), " ", 2)
		i.GivenName = parts[0]
		if len(parts) == 2 && i.Family == "" {
			i.Family = parts[1]
		}
	}
	return i, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
