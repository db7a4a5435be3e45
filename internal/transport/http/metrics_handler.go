package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler exposes the Prometheus scrape endpoint backed by the
// OpenTelemetry meter provider.
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler creates a metrics handler around the Prometheus
// exporter's HTTP handler.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// Routes returns the metrics routes.
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.prometheus.ServeHTTP)
	return r
}
