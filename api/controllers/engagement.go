package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/users"
	"github.com/aarav-aiphi/Backend/internal/wishlist"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// SearchHistory is the saved-search surface used by the user routes.
type SearchHistory interface {
	Save(ctx context.Context, userID uuid.UUID, query string, results []models.SearchResultRef) (*users.SearchEntryDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]users.SearchEntryDTO, error)
}

type saveSearchPayload struct {
	Query   string                   `json:"query"`
	Results []models.SearchResultRef `json:"results"`
}

// ToggleCollection adds the agent in the path to the caller's likes or
// wishlist, or removes it when already present.
func ToggleCollection(svc wishlist.Service, kind wishlist.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		listingID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Toggle(ctx, kind, userID, listingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListCollection returns a cursor page of the caller's likes or wishlist.
func ListCollection(svc wishlist.Service, kind wishlist.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, kind, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func SaveSearch(svc SearchHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body saveSearchPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Save(ctx, userID, body.Query, body.Results)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "Search saved successfully",
			"search":  entry,
		})
	}
}

func ListSearchHistory(svc SearchHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entries, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"searchHistory": entries})
	}
}
