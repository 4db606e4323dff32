package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token is malformed, its signature is invalid or it has expired.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrUnauthorized is returned when the authenticated user lacks permission.
	ErrUnauthorized = errors.New("unauthorized")
)

// SessionToken is the verified content of a signed session token.
type SessionToken struct {
	UserID    int64  `json:"userId"`    // Subject of the token
	Username  string `json:"username"`  // Username at the time of issuance
	IssuedAt  int64  `json:"issuedAt"`  // Unix timestamp when the token was created
	ExpiresAt int64  `json:"expiresAt"` // Unix timestamp when the token expires
}

// AuthTokenResponse represents a login response containing a session token.
type AuthTokenResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
