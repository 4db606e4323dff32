package user

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user and sets its ID and timestamps.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// GetUserByID retrieves a user by id, with the same contract as GetUserByUsername.
	GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error)

	// UpdateProfile overwrites the contact fields of a user.
	// Returns ErrUserNotFound if the id does not resolve.
	UpdateProfile(ctx context.Context, id int64, profile domain.UserProfile) error

	// SetStatus enables or disables a user.
	// Returns ErrUserNotFound if the id does not resolve.
	SetStatus(ctx context.Context, id int64, status domain.UserStatus) error
}
