package http

import (
	"errors"
	"net/http"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// ErrorHandlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing an error response itself.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts h to an http.HandlerFunc. A returned error is logged under op and,
// unless a response was already sent, answered with the JSON error mapped from it.
func Handle(log logging.Logger, op string, h ErrorHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)

		log := log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

		if err == nil {
			log.DebugContext(r.Context(), op)

			return
		}

		if errors.Is(err, errResponseWritten) {
			log.WarnContext(r.Context(), op+" failed", logging.Err(err))

			return
		}

		if status := WriteError(w, err); status >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), op+" failed", logging.Err(err))
		} else {
			log.WarnContext(r.Context(), op+" failed", logging.Err(err))
		}
	}
}
