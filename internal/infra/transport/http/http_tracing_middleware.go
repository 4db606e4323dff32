package http

import (
	"net/http"

	"github.com/google/uuid"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/util/encoding"
)

const TraceIDHeader = "X-Request-ID"

// TracingMiddleware creates middleware that adds request tracing.
// It uses the X-Request-ID header if present, otherwise generates a new UUIDv7.
// The trace ID is added to the request context and echoed in the response header.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := getTraceID(r)
		if traceID != "" {
			w.Header().Set(TraceIDHeader, traceID)
		}

		ctx := context_.WithTraceID(r.Context(), traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getTraceID(r *http.Request) string {
	if traceID := r.Header.Get(TraceIDHeader); traceID != "" {
		return traceID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return ""
	}

	return encoding.EncodeCrockfordB32LC(id[:])
}
