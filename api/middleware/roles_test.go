package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
)

type stubUsers map[uuid.UUID]enums.UserRole

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	role, ok := s[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id, Role: role}, nil
}

func TestResolveRoleUsesStoredRole(t *testing.T) {
	demoted := uuid.New()
	users := stubUsers{demoted: enums.UserRoleUser}
	handler := ResolveRole(users, nil)(RequireRole(enums.UserRoleAdmin, nil)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithRole(WithUserID(req.Context(), demoted.String()), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for demoted admin, got %d", resp.Code)
	}
}

func TestResolveRoleRejectsUnknownUser(t *testing.T) {
	handler := ResolveRole(stubUsers{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithRole(WithUserID(req.Context(), uuid.NewString()), enums.UserRoleSuperadmin)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
