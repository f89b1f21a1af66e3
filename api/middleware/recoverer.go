package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aarav-aiphi/Backend/api/responses"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// Recoverer turns a handler panic into a logged 500. http.ErrAbortHandler is
// re-raised so net/http can drop the connection as intended.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				cause := fmt.Errorf("panic: %v", rec)
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "handler panicked"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
