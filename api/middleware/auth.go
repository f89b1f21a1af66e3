package middleware

import (
	"net/http"
	"strings"

	"github.com/aarav-aiphi/Backend/api/responses"
	pkgAuth "github.com/aarav-aiphi/Backend/pkg/auth"
	"github.com/aarav-aiphi/Backend/pkg/auth/session"
	"github.com/aarav-aiphi/Backend/pkg/config"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

type tokenGate struct {
	cfg      config.JWTConfig
	cookie   string
	sessions session.AccessSessionChecker
	logg     *logger.Logger
}

// Auth rejects requests without a valid access token backed by a live
// session. The session cookie wins over an Authorization bearer header.
func Auth(cfg config.JWTConfig, cookieName string, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	g := tokenGate{cfg: cfg, cookie: cookieName, sessions: sessions, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := g.identify(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, g.attach(r, claims))
		})
	}
}

// OptionalAuth attaches the caller identity when the request carries a usable
// token. Anything else, store failures included, is served anonymously.
func OptionalAuth(cfg config.JWTConfig, cookieName string, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	g := tokenGate{cfg: cfg, cookie: cookieName, sessions: sessions, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := g.identify(r); err == nil {
				r = g.attach(r, claims)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g tokenGate) identify(r *http.Request) (*pkgAuth.AccessTokenClaims, error) {
	raw := TokenFromRequest(r, g.cookie)
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	claims, err := pkgAuth.ParseAccessToken(g.cfg, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if g.sessions == nil {
		return claims, nil
	}
	live, err := g.sessions.HasSession(r.Context(), claims.ID)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !live:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Session expired")
	}
	return claims, nil
}

func (g tokenGate) attach(r *http.Request, claims *pkgAuth.AccessTokenClaims) *http.Request {
	userID := claims.UserID.String()
	ctx := WithAccessID(WithRole(WithUserID(r.Context(), userID), claims.Role), claims.ID)
	if g.logg != nil {
		ctx = g.logg.WithFields(ctx, map[string]any{"user_id": userID, "actor_role": string(claims.Role)})
	}
	return r.WithContext(ctx)
}

// TokenFromRequest returns the raw access token, or "" when none is present.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
			return strings.TrimSpace(c.Value)
		}
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
