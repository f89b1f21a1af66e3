package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// SuccessEnvelope wraps every 2xx body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Codes whose own message is safe to show the caller. Everything else gets
// the code's public message.
var clientMessageCodes = map[pkgerrors.Code]bool{
	pkgerrors.CodeValidation:    true,
	pkgerrors.CodeForbidden:     true,
	pkgerrors.CodeUnauthorized:  true,
	pkgerrors.CodeNotFound:      true,
	pkgerrors.CodeConflict:      true,
	pkgerrors.CodeStateConflict: true,
	pkgerrors.CodeIdempotency:   true,
	pkgerrors.CodeRateLimit:     true,
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteError renders err as the error envelope. Client errors are logged at
// warn level, server errors at error level with Postgres diagnostics.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := APIError{Code: string(typed.Code()), Message: meta.PublicMessage}
	if m := typed.Message(); m != "" && clientMessageCodes[typed.Code()] {
		apiErr.Message = m
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if logg != nil {
		fields := pkgerrors.LogFields(err)
		fields["status"] = meta.HTTPStatus
		if dm, ok := typed.Details().(map[string]any); ok {
			if step, ok := dm["step"]; ok {
				fields["step"] = step
			}
		}
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, ErrorEnvelope{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
