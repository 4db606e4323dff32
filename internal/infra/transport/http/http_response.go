package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
)

const (
	codeBadRequest = "bad_request"
	codeInternal   = "internal_error"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Ordered: the first match wins, so specific kinds precede the generic storage failure.
//
//nolint:gochecknoglobals
var errorMappings = []errorMapping{
	{domain.ErrNoAuthToken, http.StatusUnauthorized, "no_auth_token"},
	{domain.ErrInvalidAuthToken, http.StatusUnauthorized, "invalid_token"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domain.ErrAccountDisabled, http.StatusForbidden, "account_disabled"},
	{domain.ErrUnauthorized, http.StatusForbidden, "forbidden"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{domain.ErrCartLineNotFound, http.StatusNotFound, "cart_line_not_found"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{domain.ErrUserAlreadyExists, http.StatusConflict, "user_already_exists"},
	{domain.ErrEmptyCart, http.StatusConflict, "empty_cart"},
	{domain.ErrProductUnavailable, http.StatusConflict, "product_unavailable"},
	{domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{domain.ErrStorageConflict, http.StatusConflict, "storage_conflict"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{domain.ErrInvalidPagination, http.StatusBadRequest, "invalid_pagination"},
	{domain.ErrInvalidOrderStatus, http.StatusBadRequest, "invalid_order_status"},
	{domain.ErrInvalidUserStatus, http.StatusBadRequest, "invalid_user_status"},
	{domain.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{domain.ErrInvalidProduct, http.StatusBadRequest, "invalid_product"},
	{domain.ErrInvalidPassword, http.StatusBadRequest, "invalid_password"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout"},
}

// StatusForError maps an error to its HTTP status, machine-readable code and client message.
// Unknown errors, including storage failures, map to 500 without exposing details.
func StatusForError(err error) (int, string, string) {
	if errors.Is(err, domain.ErrBadRequest) {
		return http.StatusBadRequest, codeBadRequest, strings.ReplaceAll(err.Error(), "\n", ": ")
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error()
		}
	}

	return http.StatusInternalServerError, codeInternal, http.StatusText(http.StatusInternalServerError)
}

// WriteError answers with the JSON error body for err and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status, code, message := StatusForError(err)
	WriteErrorResponse(w, status, code, message)

	return status
}

// WriteErrorResponse answers with a JSON error body.
func WriteErrorResponse(w http.ResponseWriter, status int, code, message string) {
	_ = WriteJSON(w, status, domain.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// WriteJSON answers with v encoded as JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return errors.Join(errResponseWritten, err)
	}

	return nil
}

// errResponseWritten marks failures that happen after the status line was sent.
var errResponseWritten = errors.New("response already written")
