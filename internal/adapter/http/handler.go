package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/validation"
)

// Handler is the inbound HTTP adapter of the allocation service. It
// triggers passes, serves the latest allocation and its history, runs
// dry-run simulations and exposes prometheus metrics.
type Handler struct {
	svc       port.AllocationUseCase
	validator *validation.Validator
	logger    *slog.Logger
	router    chi.Router
}

// NewHandler creates a handler with all routes configured. A nil gatherer
// leaves /metrics unregistered.
func NewHandler(svc port.AllocationUseCase, validator *validation.Validator, gatherer prometheus.Gatherer, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, validator: validator, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns/{id}/allocations", func(r chi.Router) {
			r.Post("/", h.handleRunPass)
			r.Get("/latest", h.handleLatest)
			r.Get("/history", h.handleHistory)
		})
		r.Post("/allocations/simulate", h.handleSimulate)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
