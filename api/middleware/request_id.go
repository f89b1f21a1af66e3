package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/pkg/logger"
)

const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 128

// RequestID propagates a caller-supplied X-Request-Id when it looks sane and
// mints a UUID otherwise. The id is echoed on the response and attached to
// every log line written with the request context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if !validRequestID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
