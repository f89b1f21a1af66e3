package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aarav-aiphi/Backend/api/responses"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyReplayedHeader marks responses served from a stored result.
const IdempotencyReplayedHeader = "Idempotent-Replayed"

// pendingTTL bounds how long a crashed request can block its key.
const pendingTTL = time.Minute

// IdempotencyStore is the slice of the Redis client the middleware uses.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// IdempotencyPolicy configures one route group. Without Required, requests
// lacking the header pass straight through.
type IdempotencyPolicy struct {
	TTL      time.Duration
	Required bool
}

type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotent replays the first non-5xx response recorded for a caller's
// Idempotency-Key. The same key with a different body is rejected, as is a
// retry that arrives while the first attempt is still running.
func Idempotent(store IdempotencyStore, policy IdempotencyPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			fail := func(err error) { responses.WriteError(ctx, logg, w, err) }

			id := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if id == "" {
				if policy.Required {
					fail(pkgerrors.New(pkgerrors.CodeValidation, IdempotencyHeader+" header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				fail(pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintRequest(r, body)
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, id)

			marker, _ := json.Marshal(storedResponse{Pending: true, Fingerprint: fingerprint})
			reserved, err := store.SetNX(ctx, key, string(marker), pendingTTL)
			if err != nil {
				fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replay(w, r, store, key, fingerprint, fail)
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusOrOK()
			if status >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release_failed", err)
				}
				return
			}
			payload, _ := json.Marshal(storedResponse{
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.buf.Bytes(),
			})
			if err := store.Set(ctx, key, string(payload), policy.TTL); err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, store IdempotencyStore, key, fingerprint string, fail func(error)) {
	raw, err := store.Get(r.Context(), key)
	if errors.Is(err, redis.Nil) {
		fail(pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is still in progress"))
		return
	}
	if err != nil {
		fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}
	var prior storedResponse
	if err := json.Unmarshal([]byte(raw), &prior); err != nil {
		fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case prior.Fingerprint != fingerprint:
		fail(pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request"))
	case prior.Pending:
		fail(pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is still in progress"))
	default:
		if prior.ContentType != "" {
			w.Header().Set("Content-Type", prior.ContentType)
		}
		w.Header().Set(IdempotencyReplayedHeader, "true")
		w.WriteHeader(prior.Status)
		_, _ = w.Write(prior.Body)
	}
}

func fingerprintRequest(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Header.Get("Content-Type")))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *captureWriter) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
