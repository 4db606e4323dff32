package domain

import (
	"errors"
	"math"
)

// ErrInvalidPagination is returned when page or page size is below one, or the page lies
// beyond any offset the storage can address.
var ErrInvalidPagination = errors.New("invalid page or page size")

// Pagination selects a window of a listing. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination validates page and pageSize and clamps pageSize to maxPageSize.
// The resulting Offset never exceeds math.MaxInt32.
// A maxPageSize of zero disables clamping.
func NewPagination(page, pageSize, maxPageSize int) (Pagination, error) {
	if page < 1 || pageSize < 1 {
		return Pagination{}, ErrInvalidPagination
	}

	if maxPageSize > 0 && pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// Keep the row offset within a 32-bit integer on every backend.
	if page-1 > math.MaxInt32/pageSize {
		return Pagination{}, ErrInvalidPagination
	}

	return Pagination{Page: page, PageSize: pageSize}, nil
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one window of a listing together with the total row count.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// NewPage builds a Page, never leaving Items nil so it encodes as [].
func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}

	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}
