package controllers

import (
	"net/http"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/news"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// NewsArticles proxies the provider's article search. The provider payload
// is returned as-is inside the envelope.
func NewsArticles(svc news.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, news.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		payload, err := svc.Articles(r.Context(), news.Query{
			Q:        validators.SanitizeString(q.Get("q"), 500),
			Sources:  validators.SanitizeString(q.Get("sources"), 500),
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func NewsSources(svc news.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Sources(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
