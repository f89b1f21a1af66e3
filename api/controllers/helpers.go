package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aarav-aiphi/Backend/api/middleware"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/pkg/config"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/pagination"
)

const multipartMemory = 32 << 20

// CookieSettings controls the session cookie written on sign-in.
type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
	TTL    time.Duration
}

// NewCookieSettings derives cookie attributes from config. Production cookies
// are Secure and SameSite=None so the separate frontend origin can send them.
func NewCookieSettings(cfg *config.Config) CookieSettings {
	name := cfg.Cookie.Name
	if name == "" {
		name = "token"
	}
	return CookieSettings{
		Name:   name,
		Domain: cfg.Cookie.Domain,
		Secure: cfg.App.IsProd(),
		TTL:    cfg.JWT.Expiration(),
	}
}

func (c CookieSettings) write(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, c.cookie(token, expires, 0))
}

func (c CookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", time.Unix(0, 0), -1))
}

func (c CookieSettings) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.Secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	id, _, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// formRecord flattens the first value of every multipart field.
func formRecord(r *http.Request) map[string]string {
	out := map[string]string{}
	if r.MultipartForm == nil {
		return out
	}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
