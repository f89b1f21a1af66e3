package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/api/middleware"
	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

func AgentsAll(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.All(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func AgentsFilters(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := svc.Filters(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, filters)
	}
}

// AgentsSearch ranks accepted agents against ?query= (q is accepted too).
func AgentsSearch(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := q.Get("query")
		if strings.TrimSpace(query) == "" {
			query = q.Get("q")
		}
		items, err := svc.Search(r.Context(), validators.SanitizeString(query, 200))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func AgentsTopLiked(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.TopLikedByCategory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func AgentsSimilar(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Similar(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AgentsGet(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AgentsCreate creates a listing directly from a multipart form (logo and
// thumbnail files plus flat fields) or a JSON body.
func AgentsCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, logo, thumbnail, err := listingInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), listings.CreateInput{Fields: fields, Logo: logo, Thumbnail: thumbnail})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": "Agent created successfully",
			"agent":   item,
		})
	}
}

// AgentsTried bumps the tried-by counter. Signed-in callers are attributed.
func AgentsTried(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var userID *uuid.UUID
		if uid, _, ok := middleware.ActorFromContext(r.Context()); ok {
			userID = &uid
		}
		item, err := svc.MarkTried(r.Context(), id, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "Tried By Count Updated Successfully",
			"agent":   item,
		})
	}
}

func listingInput(r *http.Request) (listings.Fields, *assets.File, *assets.File, error) {
	if !isMultipart(r) {
		var fields listings.Fields
		if err := validators.DecodeJSONBody(r, &fields); err != nil {
			return listings.Fields{}, nil, nil, err
		}
		return fields, nil, nil, nil
	}

	if err := validators.ParseMultipart(r, multipartMemory); err != nil {
		return listings.Fields{}, nil, nil, err
	}
	fields, err := listings.FieldsFromRecord(formRecord(r))
	if err != nil {
		return listings.Fields{}, nil, nil, err
	}
	logo, err := validators.FormFile(r, "logo")
	if err != nil {
		return listings.Fields{}, nil, nil, err
	}
	thumbnail, err := validators.FormFile(r, "thumbnail")
	if err != nil {
		return listings.Fields{}, nil, nil, err
	}
	return fields, logo, thumbnail, nil
}
