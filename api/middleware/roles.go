package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// RequireRole admits callers whose role is min or higher. Auth must run first.
func RequireRole(min enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required"))
				return
			}
			if !enums.UserRole(RoleFromContext(r.Context())).AtLeast(min) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RoleLookup loads the stored user behind a token.
type RoleLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ResolveRole reloads the caller's role from the user store, so role changes
// apply to tokens issued before them. Unknown users are rejected.
func ResolveRole(users RoleLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _, ok := ActorFromContext(r.Context())
			if !ok || users == nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "User not found"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve role"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), user.Role)))
		})
	}
}
