package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// TokenVerifier checks a session token and returns its verified content.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.SessionToken, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Returns domain.ErrNoAuthToken if the header is absent or carries no token.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		token, ok = strings.CutPrefix(header, "bearer ")
	}

	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", domain.ErrNoAuthToken
	}

	return token, nil
}

// AuthorizingMiddleware creates middleware that validates session tokens.
// Requests without a valid bearer token are rejected with 401.
// On successful validation, the user id is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	verifier TokenVerifier,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := BearerToken(r)
		if err != nil {
			log.WarnContext(r.Context(), "no token provided")
			WriteError(w, err)

			return
		}

		token, err := verifier.VerifyToken(r.Context(), tokenString)
		if err != nil {
			log.WarnContext(r.Context(), "invalid token", logging.Err(err))
			WriteError(w, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUserID(r.Context(), token.UserID)))
	})
}

// Authorize returns a decorator applying AuthorizingMiddleware, for use on single routes.
func Authorize(verifier TokenVerifier, log logging.Logger) func(http.HandlerFunc) http.Handler {
	return func(next http.HandlerFunc) http.Handler {
		return AuthorizingMiddleware(next, verifier, log)
	}
}

// UserID returns the id stored by AuthorizingMiddleware.
// Returns domain.ErrNoAuthToken if the request was not authorized.
func UserID(r *http.Request) (int64, error) {
	userID, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		return 0, domain.ErrNoAuthToken
	}

	return userID, nil
}
