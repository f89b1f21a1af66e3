package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aarav-aiphi/Backend/api/middleware"
	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/auth"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// AuthSignup registers a user and signs them in.
func AuthSignup(svc auth.Service, cookie CookieSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.SignupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Signup(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookie.write(w, result.AccessToken, result.ExpiresAt)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, cookie CookieSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookie.write(w, result.AccessToken, result.ExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the caller's session when one is present and always
// clears the cookie.
func AuthLogout(svc auth.Service, cookie CookieSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cookie.clear(w)
		responses.WriteSuccess(w, map[string]string{"message": "Logout successful"})
	}
}

func AuthCurrentUser(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CurrentUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AuthGoogleBegin redirects the browser to Google's consent screen.
func AuthGoogleBegin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := svc.GoogleBegin(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// AuthGoogleCallback completes the Google flow, sets the session cookie and
// sends the browser back to the frontend. Failures land on the frontend
// login page.
func AuthGoogleCallback(svc auth.Service, cookie CookieSettings, frontendURL string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if reason := q.Get("error"); reason != "" {
			http.Redirect(w, r, loginRedirect(frontendURL, reason), http.StatusFound)
			return
		}

		result, err := svc.GoogleComplete(r.Context(), q.Get("state"), q.Get("code"))
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "auth.google.callback_failed", err)
			}
			http.Redirect(w, r, loginRedirect(frontendURL, "google_sign_in_failed"), http.StatusFound)
			return
		}

		cookie.write(w, result.AccessToken, result.ExpiresAt)
		http.Redirect(w, r, strings.TrimRight(frontendURL, "/"), http.StatusFound)
	}
}

func loginRedirect(frontendURL, reason string) string {
	return strings.TrimRight(frontendURL, "/") + "/login?error=" + url.QueryEscape(reason)
}

func AuthForgotPassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.ForgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ForgotPassword(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Password reset email sent"})
	}
}

func AuthResetPassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reset token is required"))
			return
		}

		var body auth.ResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ResetPassword(r.Context(), token, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Password has been reset successfully"})
	}
}
