package controllers

import (
	"net/http"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/changes"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

type rejectPayload struct {
	Reason string `json:"reason" validate:"max=2000"`
}

func PendingChanges(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListPending(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ApproveChange(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolveChange(w, r, svc, changes.Approve(), logg)
	}
}

// RejectChange accepts an optional {"reason"} body.
func RejectChange(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body rejectPayload
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resolveChange(w, r, svc, changes.Reject(body.Reason), logg)
	}
}

func resolveChange(w http.ResponseWriter, r *http.Request, svc changes.Service, decision changes.Decision, logg *logger.Logger) {
	ctx := r.Context()
	reviewer, err := actorID(r)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	result, err := svc.Resolve(ctx, id, reviewer, decision)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}
