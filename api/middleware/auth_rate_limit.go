package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/api/responses"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

const maxThrottleBody = 64 << 10

// RateLimiterStore counts hits per scope in fixed windows.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ThrottleRule caps attempts on one credential endpoint per client IP and per
// submitted email address within Window. A zero limit disables that check.
type ThrottleRule struct {
	Name     string
	Window   time.Duration
	PerIP    int
	PerEmail int
}

func (r ThrottleRule) active() bool {
	return r.Window > 0 && (r.PerIP > 0 || r.PerEmail > 0)
}

type throttleCheck struct {
	dimension string
	subject   string
	limit     int
}

// Throttle rejects requests over rule with 429 and a Retry-After header.
// Emails are counted by digest so raw addresses never reach Redis or logs.
// Client IPs come from RemoteAddr; mount chi's RealIP first behind a proxy.
func Throttle(rule ThrottleRule, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	name := strings.ToLower(strings.TrimSpace(rule.Name))
	if name == "" {
		name = "auth"
	}
	return func(next http.Handler) http.Handler {
		if store == nil || !rule.active() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var checks []throttleCheck
			if rule.PerIP > 0 {
				if ip := remoteIP(r); ip != "" {
					checks = append(checks, throttleCheck{"ip", ip, rule.PerIP})
				}
			}
			if rule.PerEmail > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxThrottleBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if digest := emailDigest(body); digest != "" {
					checks = append(checks, throttleCheck{"email", digest, rule.PerEmail})
				}
			}

			for _, c := range checks {
				scope := "auth:" + name + ":" + c.dimension + ":" + c.subject
				allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(c.limit), rule.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit"))
					return
				}
				if allowed {
					continue
				}
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":    name,
						"dimension": c.dimension,
						"subject":   c.subject,
						"attempts":  count,
						"limit":     c.limit,
					}), "auth.throttled")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(rule.Window.Round(time.Second).Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func emailDigest(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
