package controllers

import (
	"context"
	"net/http"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/contacts"
	"github.com/aarav-aiphi/Backend/internal/newsletter"
	"github.com/aarav-aiphi/Backend/internal/usecases"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

type ContactService interface {
	Submit(ctx context.Context, req contacts.SubmitRequest) (*contacts.Receipt, error)
}

type NewsletterService interface {
	Subscribers(ctx context.Context) ([]newsletter.SubscriberDTO, error)
	Subscribe(ctx context.Context, req newsletter.SubscribeRequest) (string, error)
	SendAll(ctx context.Context, b newsletter.Broadcast) (*newsletter.SendResult, error)
	SendTest(ctx context.Context, b newsletter.Broadcast) (*newsletter.SendResult, error)
}

type UseCaseService interface {
	List(ctx context.Context) ([]usecases.UseCaseDTO, error)
	Create(ctx context.Context, req usecases.CreateRequest) (*usecases.CreateResult, error)
}

func ContactSubmit(svc ContactService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body contacts.SubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := svc.Submit(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

func NewsletterSubscribers(svc NewsletterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.Subscribers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subs)
	}
}

func NewsletterSubscribe(svc NewsletterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body newsletter.SubscribeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.Subscribe(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"message": msg})
	}
}

func NewsletterSend(svc NewsletterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body newsletter.Broadcast
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SendAll(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func NewsletterSendTest(svc NewsletterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body newsletter.Broadcast
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SendTest(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UseCasesList(svc UseCaseService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func UseCasesCreate(svc UseCaseService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body usecases.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
