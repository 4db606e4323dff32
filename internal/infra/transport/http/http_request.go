package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/storefront/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// RequiredFormValue returns the named form or query value.
// Returns domain.ErrBadRequest if it is empty.
func RequiredFormValue(r *http.Request, name string) (string, error) {
	value := r.FormValue(name)
	if value == "" {
		return "", errors.Join(domain.ErrBadRequest, fmt.Errorf("%s is required", name))
	}

	return value, nil
}

// FormInt parses the named form or query value as int, using def if it is absent.
func FormInt(r *http.Request, name string, def int) (int, error) {
	value := r.FormValue(name)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Join(domain.ErrBadRequest, fmt.Errorf("%s must be an integer", name))
	}

	return n, nil
}

// RequiredFormInt parses the named form or query value as int.
func RequiredFormInt(r *http.Request, name string) (int, error) {
	if _, err := RequiredFormValue(r, name); err != nil {
		return 0, err
	}

	return FormInt(r, name, 0)
}

// RequiredFormInt64 parses the named form or query value as int64.
func RequiredFormInt64(r *http.Request, name string) (int64, error) {
	value, err := RequiredFormValue(r, name)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Join(domain.ErrBadRequest, fmt.Errorf("%s must be an integer", name))
	}

	return n, nil
}

// PathID parses the named path wildcard as a positive id.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Join(domain.ErrBadRequest, fmt.Errorf("invalid %s", name))
	}

	return id, nil
}

// PageParams reads the page and pageSize query values, defaulting to the first page of ten.
// Range checks are left to domain.NewPagination.
func PageParams(r *http.Request) (int, int, error) {
	page, err := FormInt(r, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}

	pageSize, err := FormInt(r, "pageSize", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}

	return page, pageSize, nil
}
