package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/api/middleware"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-controllers", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func asActor(r *http.Request, id uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(r.Context(), id.String())
	ctx = middleware.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", resp.Body.String(), err)
	}
	return env
}
