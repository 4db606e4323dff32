package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/storefront/internal/domain"
)

func TestNewCart(t *testing.T) {
	t.Parallel()

	price := func(s string) *domain.Product {
		return &domain.Product{Price: decimal.RequireFromString(s)}
	}

	cart := domain.NewCart([]domain.CartLine{
		{ProductID: 1, Quantity: 2, Product: price("10.00")},
		{ProductID: 2, Quantity: 3, Product: price("0.10")},
		{ProductID: 3, Quantity: 1},
	})

	assert.Len(t, cart.Lines, 3)
	assert.Equal(t, "20.30", cart.Total.StringFixed(2))

	empty := domain.NewCart(nil)
	assert.NotNil(t, empty.Lines)
	assert.True(t, empty.Total.IsZero())
}
