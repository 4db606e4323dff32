package http

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// RescueingMiddleware creates middleware that recovers from panics in HTTP handlers.
// It logs the panic and stack trace, then answers with a JSON 500 error.
func RescueingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler { //nolint:errorlint
					panic(p)
				}

				log.ErrorContext(ctx, "request panic", slog.Group("http",
					"uri", r.RequestURI,
					"method", r.Method,
				), slog.Group("error",
					"panic", p,
					"stack", string(debug.Stack()),
				))
				WriteErrorResponse(w, http.StatusInternalServerError, codeInternal, http.StatusText(http.StatusInternalServerError))
			}
		}(r.Context())
		next.ServeHTTP(w, r)
	})
}
