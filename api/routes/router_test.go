package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/api/controllers"
	"github.com/aarav-aiphi/Backend/internal/changes"
	"github.com/aarav-aiphi/Backend/internal/listings"
	pkgAuth "github.com/aarav-aiphi/Backend/pkg/auth"
	"github.com/aarav-aiphi/Backend/pkg/auth/session"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubUsers struct {
	roles map[uuid.UUID]enums.UserRole
}

func (s stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	role, ok := s.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id, Role: role}, nil
}

type stubListings struct {
	listings.Service
}

func (stubListings) All(ctx context.Context) ([]listings.ListingDTO, error) {
	return []listings.ListingDTO{{ID: uuid.New(), Name: "scribe"}}, nil
}

type stubChanges struct {
	changes.Service
}

func (stubChanges) ListPending(ctx context.Context, params pagination.Params) (*changes.ListResult, error) {
	return &changes.ListResult{Items: []changes.ChangeDTO{}}, nil
}

func (stubChanges) ListMine(ctx context.Context, requestedBy uuid.UUID, params pagination.Params) (*changes.ListResult, error) {
	return &changes.ListResult{Items: []changes.ChangeDTO{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", FrontendURL: "http://localhost:1234"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Cookie: config.CookieConfig{Name: "token"},
	}
}

func newTestRouter(cfg *config.Config, users stubUsers) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Dependencies{
		Config:   cfg,
		Logger:   logg,
		Health:   map[string]controllers.Pinger{"db": stubPinger{}},
		Sessions: stubSessionChecker{},
		Users:    users,
		Listings: stubListings{},
		Changes:  stubChanges{},
	})
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsers{})
	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsers{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicAgentsListing(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsers{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/agents/all", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "scribe") {
		t.Fatalf("expected listing in body, got %s", resp.Body.String())
	}
}

func TestCurrentUserRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsers{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/users/current_user", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminRoutesUseStoredRole(t *testing.T) {
	cfg := testConfig()
	member, admin := uuid.New(), uuid.New()
	router := newTestRouter(cfg, stubUsers{roles: map[uuid.UUID]enums.UserRole{
		member: enums.UserRoleUser,
		admin:  enums.UserRoleAdmin,
	}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/myrequests", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	// a token claiming admin is not enough when the stored role is user
	req := httptest.NewRequest(http.MethodGet, "/api/admin/myrequests", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, member, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for demoted user got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/myrequests", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: buildToken(t, cfg, admin, enums.UserRoleAdmin)})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestSuperadminRoutesRejectAdmins(t *testing.T) {
	cfg := testConfig()
	admin, root := uuid.New(), uuid.New()
	router := newTestRouter(cfg, stubUsers{roles: map[uuid.UUID]enums.UserRole{
		admin: enums.UserRoleAdmin,
		root:  enums.UserRoleSuperadmin,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/superadmin/pending-changes", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, admin, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/superadmin/pending-changes", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, root, enums.UserRoleSuperadmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for superadmin got %d", resp.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsers{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
