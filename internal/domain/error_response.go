package domain

import "errors"

// ErrBadRequest is returned by transports for missing or malformed request parameters.
var ErrBadRequest = errors.New("bad request")

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
