package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/enums"
)

type stubListings struct {
	listings.Service
	query   string
	triedBy *uuid.UUID
}

func (s *stubListings) Search(ctx context.Context, query string) ([]listings.ListingDTO, error) {
	s.query = query
	return []listings.ListingDTO{}, nil
}

func (s *stubListings) MarkTried(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*listings.ListingDTO, error) {
	s.triedBy = userID
	return &listings.ListingDTO{ID: id, TriedBy: 4}, nil
}

func (s *stubListings) ByStatus(ctx context.Context, status enums.ListingStatus) ([]listings.ListingDTO, error) {
	return []listings.ListingDTO{}, nil
}

func TestAgentsSearchFallsBackToQ(t *testing.T) {
	svc := &stubListings{}
	resp := httptest.NewRecorder()
	AgentsSearch(svc, testLogger()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/agents/search?q=writing", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "writing", svc.query)

	resp = httptest.NewRecorder()
	AgentsSearch(svc, testLogger()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/agents/search?query=code&q=writing", nil))
	assert.Equal(t, "code", svc.query)
}

func TestAgentsTriedAttributesSignedInCaller(t *testing.T) {
	id := uuid.New()
	svc := &stubListings{}
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/api/agents/triedby/"+id.String(), nil), map[string]string{"id": id.String()})
	resp := httptest.NewRecorder()
	AgentsTried(svc, testLogger()).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, svc.triedBy)

	user := uuid.New()
	req = withURLParams(httptest.NewRequest(http.MethodPost, "/api/agents/triedby/"+id.String(), nil), map[string]string{"id": id.String()})
	req = asActor(req, user, enums.UserRoleUser)
	resp = httptest.NewRecorder()
	AgentsTried(svc, testLogger()).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.triedBy)
	assert.Equal(t, user, *svc.triedBy)
}

func TestAdminAgentsByStatusRejectsUnknown(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/admin/agents/archived", nil), map[string]string{"status": "archived"})
	resp := httptest.NewRecorder()
	AdminAgentsByStatus(&stubListings{}, testLogger()).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/api/admin/agents/onHold", nil), map[string]string{"status": "onHold"})
	resp = httptest.NewRecorder()
	AdminAgentsByStatus(&stubListings{}, testLogger()).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
