package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/aarav-aiphi/Backend/pkg/config"
)

// CORS returns middleware that applies the configured origin policy. The
// frontend URL is always allowed.
func CORS(cfg config.CORSConfig, frontendURL string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.AllowedOrigins, frontendURL),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{RequestIDHeader, IdempotencyReplayedHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

func allowedOrigins(configured []string, frontendURL string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(configured)+1)
	for _, origin := range append(configured, frontendURL) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		out = append(out, origin)
	}
	return out
}
