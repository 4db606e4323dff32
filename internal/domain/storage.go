package domain

import "errors"

var (
	// ErrStorageFailure is returned for transport and transaction errors of the storage backend.
	ErrStorageFailure = errors.New("storage failure")
	// ErrStorageConflict is returned when a transaction lost a race and may be retried.
	ErrStorageConflict = errors.New("storage conflict")
)
