package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics instruments every request with an OpenTelemetry counter
// and latency histogram. The Prometheus exporter makes them visible on
// /metrics.
func RequestMetrics(meter metric.Meter, logger *slog.Logger) func(next http.Handler) http.Handler {
	counter, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total HTTP requests processed"))
	if err != nil {
		logger.Error("failed to create request counter", "error", err.Error())
	}
	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		logger.Error("failed to create duration histogram", "error", err.Error())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("path", r.URL.Path),
				attribute.Int("status", ww.Status()),
			)
			if counter != nil {
				counter.Add(r.Context(), 1, attrs)
			}
			if duration != nil {
				duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
			}
		})
	}
}
