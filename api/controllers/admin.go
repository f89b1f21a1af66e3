package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/changes"
	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

type statusChangePayload struct {
	Status       enums.ListingStatus `json:"status" validate:"required"`
	Instructions string              `json:"instructions"`
}

// AdminAgentsByStatus lists agents in one moderation bucket.
func AdminAgentsByStatus(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := enums.ParseListingStatus(strings.TrimSpace(chi.URLParam(r, "status")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown agent status"))
			return
		}
		items, err := svc.ByStatus(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminDeleteAgent queues deletion of an agent for superadmin review.
func AdminDeleteAgent(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requester, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		targetID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		receipt, err := svc.SubmitDelete(ctx, requester, targetID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, receipt)
	}
}

// AdminChangeStatus queues a status transition. Instructions only travel
// with onHold.
func AdminChangeStatus(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requester, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		targetID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body statusChangePayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		receipt, err := svc.SubmitStatusChange(ctx, requester, targetID, body.Status, body.Instructions)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, receipt)
	}
}

// AdminUpdateAgent queues an update. New logo or thumbnail files are staged
// in temporary storage until the change is resolved.
func AdminUpdateAgent(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requester, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		targetID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		fields, logo, thumbnail, err := listingInput(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		receipt, err := svc.SubmitUpdate(ctx, changes.UpdateInput{
			RequestedBy: requester,
			TargetID:    targetID,
			Fields:      fields,
			Logo:        logo,
			Thumbnail:   thumbnail,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, receipt)
	}
}

// AdminBulkUpload queues one create per CSV row. The file is read from the
// "file" multipart field, or from the raw body when sent as text/csv.
func AdminBulkUpload(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requester, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var result *changes.BulkResult
		if isMultipart(r) {
			if err := validators.ParseMultipart(r, multipartMemory); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			file, err := validators.FormFile(r, "file")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if file == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "No file uploaded"))
				return
			}
			result, err = svc.SubmitBulkCSV(ctx, requester, file.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		} else {
			result, err = svc.SubmitBulkCSV(ctx, requester, r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, result)
	}
}

// AdminMyRequests lists the caller's own submissions, latest first.
func AdminMyRequests(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requester, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.ListMine(ctx, requester, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
