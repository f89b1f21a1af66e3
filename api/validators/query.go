package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter. Missing means
// fallback; present values must lie in [lo, hi].
func ParseQueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be an integer", key).
			WithDetails(map[string]any{"field": key})
	}
	if n < lo || n > hi {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be between %d and %d", key, lo, hi).
			WithDetails(map[string]any{"field": key, "min": lo, "max": hi})
	}
	return n, nil
}
