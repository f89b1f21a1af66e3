package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}

func TestWriteSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]string{"message": "Agent created successfully"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"message":"Agent created successfully"}}`, rec.Body.String())
}

func TestWriteErrorEnvelope(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		status      int
		code        pkgerrors.Code
		message     string
		wantDetails bool
	}{
		{
			name:        "validation keeps message and details",
			err:         pkgerrors.New(pkgerrors.CodeValidation, "Missing required columns").WithDetails(map[string]any{"missing": []string{"name"}}),
			status:      http.StatusBadRequest,
			code:        pkgerrors.CodeValidation,
			message:     "Missing required columns",
			wantDetails: true,
		},
		{
			name:    "state conflict",
			err:     pkgerrors.New(pkgerrors.CodeStateConflict, "Change already resolved"),
			status:  http.StatusUnprocessableEntity,
			code:    pkgerrors.CodeStateConflict,
			message: "Change already resolved",
		},
		{
			name:    "untyped error is masked",
			err:     errors.New("pq: relation does not exist"),
			status:  http.StatusInternalServerError,
			code:    pkgerrors.CodeInternal,
			message: "internal server error",
		},
		{
			name:    "dependency hides its own message",
			err:     pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "smtp send"),
			status:  http.StatusServiceUnavailable,
			code:    pkgerrors.CodeDependency,
			message: "external service unavailable",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, string(tc.code), body.Code)
			assert.Equal(t, tc.message, body.Message)
			assert.Equal(t, tc.wantDetails, body.Details != nil)
		})
	}
}

func TestWriteErrorLogLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	WriteError(context.Background(), logg, httptest.NewRecorder(), pkgerrors.New(pkgerrors.CodeNotFound, "Agent not found"))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"status":404`)

	buf.Reset()
	WriteError(context.Background(), logg, httptest.NewRecorder(), errors.New("db down"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "db down")
}
