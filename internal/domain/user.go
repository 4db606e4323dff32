package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned when a disabled user tries to authenticate.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidUserStatus is returned for status values other than active and disabled.
	ErrInvalidUserStatus = errors.New("invalid user status")
	// ErrInvalidPassword is returned when a password cannot be hashed, e.g. because it is too long.
	ErrInvalidPassword = errors.New("invalid password")
)

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// ParseUserStatus validates a status string.
func ParseUserStatus(s string) (UserStatus, error) {
	switch status := UserStatus(s); status {
	case UserStatusActive, UserStatusDisabled:
		return status, nil
	default:
		return "", ErrInvalidUserStatus
	}
}

// User represents a registered storefront customer.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash []byte     `json:"-"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Avatar       string     `json:"avatar"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Active reports whether the user may log in.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}

// UserProfile holds the contact fields a user may change on their own account.
type UserProfile struct {
	Email  string
	Phone  string
	Avatar string
}
