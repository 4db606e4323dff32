package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mkrupp/storefront/internal/infra/metrics"
)

// MetricsMiddleware counts requests and observes their latency by method and status code.
// A nil registry disables the middleware.
func MetricsMiddleware(next http.Handler, registry *metrics.Registry) http.Handler {
	if registry == nil {
		return next
	}

	requests := registry.Counter("http_requests_total",
		"HTTP requests by method and status code.",
		"method", "code")
	duration := registry.Histogram("http_request_duration_seconds",
		"HTTP request latency by method.",
		nil,
		"method")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewResponseRecorder(w)

		next.ServeHTTP(rec, r)

		requests.WithLabelValues(r.Method, strconv.Itoa(rec.StatusCode)).Inc()
		duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
