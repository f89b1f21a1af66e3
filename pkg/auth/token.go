// Package auth mints and verifies the HS256 access tokens carried in the
// session cookie or a bearer header.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// clockSkew tolerates small drift between the API replicas.
const clockSkew = 30 * time.Second

// AccessTokenPayload is what a caller knows when minting.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the decoded token. The role is a hint: handlers that
// gate on it re-read the user row.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("token has no user id")
	}
	if c.Subject != c.UserID.String() {
		return errors.New("token subject does not match user id")
	}
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("token has no jti")
	}
	return nil
}

func checkConfig(cfg config.JWTConfig) error {
	switch {
	case cfg.Secret == "":
		return errors.New("jwt secret is required")
	case cfg.Issuer == "":
		return errors.New("jwt issuer is required")
	}
	return nil
}

// MintAccessToken signs a token valid from now for cfg.Expiration(). An empty
// JTI gets a random one.
func MintAccessToken(cfg config.JWTConfig, now time.Time, p AccessTokenPayload) (string, error) {
	if err := checkConfig(cfg); err != nil {
		return "", err
	}
	if p.UserID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	if !p.Role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", p.Role)
	}
	jti := strings.TrimSpace(p.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AccessTokenClaims{
		UserID: p.UserID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    cfg.Issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration())),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry. Tokens without an
// exp claim are rejected.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	)
	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}
