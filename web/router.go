package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes constructs the chi router containing all API endpoints. Deploy and
// destroy return immediately after scheduling, so the request timeout only
// bounds the synchronous part of each operation.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/deploy", a.handleDeploy)
	r.Post("/destroy", a.handleDestroy)
	r.Post("/cancel", a.handleCancel)

	r.Route("/deployments", func(r chi.Router) {
		r.Get("/", a.handleListDeployments)
		r.Get("/{id}/status", a.handleDeploymentStatus)
		r.Get("/{id}/outputs", a.handleDeploymentOutputs)
	})

	r.Post("/credentials/validate", a.handleValidateCredentials)
	r.Get("/health", a.handleHealth)

	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	return r
}
