package middleware

import (
	"context"

	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
	accessIDKey
)

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

// UserIDFromContext is "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string { return stringValue(ctx, userIDKey) }

func RoleFromContext(ctx context.Context) string { return stringValue(ctx, roleKey) }

// AccessIDFromContext returns the jti of the caller's token.
func AccessIDFromContext(ctx context.Context) string { return stringValue(ctx, accessIDKey) }

// ActorFromContext returns the parsed caller identity, or false when the
// request is anonymous.
func ActorFromContext(ctx context.Context) (uuid.UUID, enums.UserRole, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, enums.UserRole(RoleFromContext(ctx)), true
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, userIDKey, userID)
}

func WithRole(ctx context.Context, role enums.UserRole) context.Context {
	return withValue(ctx, roleKey, string(role))
}

func WithAccessID(ctx context.Context, accessID string) context.Context {
	return withValue(ctx, accessIDKey, accessID)
}
