package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrCartLineNotFound is returned when a cart line id does not resolve for the user.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CartLine is a product pending purchase in a user's cart.
// There is at most one line per (UserID, ProductID).
type CartLine struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Product is the current catalog entry, set on listing only.
	Product *Product `json:"product,omitempty"`
}

// Cart is a user's cart lines with the total at current catalog prices.
type Cart struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// NewCart sums the lines whose product is known.
func NewCart(lines []CartLine) Cart {
	if lines == nil {
		lines = []CartLine{}
	}

	total := decimal.Zero

	for _, line := range lines {
		if line.Product != nil {
			total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}

	return Cart{Lines: lines, Total: total}
}
