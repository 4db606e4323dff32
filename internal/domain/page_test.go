package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
)

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		pageSize   int
		max        int
		want       domain.Pagination
		wantOffset int
		wantErr    error
	}{
		{"first page", 1, 10, 100, domain.Pagination{Page: 1, PageSize: 10}, 0, nil},
		{"second page", 2, 10, 100, domain.Pagination{Page: 2, PageSize: 10}, 10, nil},
		{"clamped", 3, 500, 100, domain.Pagination{Page: 3, PageSize: 100}, 200, nil},
		{"no limit", 1, 500, 0, domain.Pagination{Page: 1, PageSize: 500}, 0, nil},
		{"zero page", 0, 10, 100, domain.Pagination{}, 0, domain.ErrInvalidPagination},
		{"zero page size", 1, 0, 100, domain.Pagination{}, 0, domain.ErrInvalidPagination},
		{"offset overflow", math.MaxInt, 10, 100, domain.Pagination{}, 0, domain.ErrInvalidPagination},
		{"beyond 32-bit offset", math.MaxInt32/10 + 2, 10, 100, domain.Pagination{}, 0, domain.ErrInvalidPagination},
		{"largest page", math.MaxInt32/10 + 1, 10, 100, domain.Pagination{Page: math.MaxInt32/10 + 1, PageSize: 10}, math.MaxInt32 / 10 * 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.NewPagination(tt.page, tt.pageSize, tt.max)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
		})
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	p := domain.Pagination{Page: 4, PageSize: 5}

	empty := domain.NewPage[int](nil, 12, p)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 12, empty.Total)
	assert.Equal(t, 4, empty.Page)
	assert.Equal(t, 5, empty.PageSize)
}
