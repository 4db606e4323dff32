package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductUnavailable is returned by checkout when a cart references a missing or unlisted product.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock is returned when a product has fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidProduct is returned for negative prices or stock and empty names.
	ErrInvalidProduct = errors.New("invalid product")
)

// PriceDecimals is the number of decimal places a price may carry.
const PriceDecimals = 2

// ProductStatus tells whether a product is offered for sale.
type ProductStatus string

const (
	ProductStatusListed   ProductStatus = "listed"
	ProductStatusUnlisted ProductStatus = "unlisted"
)

// Product is a catalog entry with its inventory counter.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"categoryId"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Listed reports whether the product can be bought.
func (p *Product) Listed() bool {
	return p.Status == ProductStatusListed
}

// Validate checks the product invariants enforced on administrative writes.
func (p *Product) Validate() error {
	switch {
	case p.Name == "":
		return errors.Join(ErrInvalidProduct, errors.New("empty name"))
	case p.Price.IsNegative():
		return errors.Join(ErrInvalidProduct, errors.New("negative price"))
	case !p.Price.Equal(p.Price.Round(PriceDecimals)):
		return errors.Join(ErrInvalidProduct, errors.New("price has fractions of a cent"))
	case p.Stock < 0:
		return errors.Join(ErrInvalidProduct, errors.New("negative stock"))
	case p.Status != ProductStatusListed && p.Status != ProductStatusUnlisted:
		return errors.Join(ErrInvalidProduct, errors.New("unknown status"))
	}

	return nil
}
