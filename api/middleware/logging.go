package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// Logging writes one access line per request after it completes. Routine
// traffic logs at info, 5xx at warn since the handler already logged the
// cause through the error writer.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   remoteIP(r),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				fields["route"] = rc.RoutePattern()
			}
			if uid := UserIDFromContext(r.Context()); uid != "" {
				fields["user_id"] = uid
			}
			ctx := logg.WithFields(r.Context(), fields)
			if status >= http.StatusInternalServerError {
				logg.Warn(ctx, "http.request")
				return
			}
			logg.Info(ctx, "http.request")
		})
	}
}
