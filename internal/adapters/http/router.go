package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moolapay/agency-service/internal/application"
	"github.com/moolapay/agency-service/internal/ports"
)

// Handler is the HTTP adapter entrypoint for the data-collection use-cases.
type Handler struct {
	service *application.Service
	tokens  ports.TokenVerifier
}

func NewHandler(service *application.Service, tokens ports.TokenVerifier) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// NewRouter registers routes and the middleware stack. Gate order on submit:
// balance first, quota second, then the pipeline.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(languageMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.With(handler.optionalAuthMiddleware).Get("/external/forms", handler.listForms)

	r.Group(func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.With(handler.gatesMiddleware).Post("/external/forms/{formId}/submit", handler.submitForm)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Get("/transactions/history", handler.transactionHistory)
		r.Get("/transactions/{id}", handler.transactionByID)
	})

	return r
}
