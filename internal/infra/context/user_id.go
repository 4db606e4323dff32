package context

import (
	"context"
)

const contextKeyUserID = contextKey("userID")

// UserIDFromContext extracts the authenticated user id from the context.
// Returns the id and true if present, or zero and false if the request is anonymous.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)

	return userID, ok
}

// WithUserID creates a new context carrying the id of the authenticated user.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}
