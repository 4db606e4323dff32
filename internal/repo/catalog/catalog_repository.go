package catalog

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines persistence of products and their stock counters.
type Repository interface {
	// CreateProduct inserts p and sets its ID and timestamps.
	CreateProduct(ctx context.Context, p *domain.Product) error

	// UpdateProduct overwrites every mutable field of p, including stock.
	// Returns ErrProductNotFound if p.ID does not resolve.
	UpdateProduct(ctx context.Context, p *domain.Product) error

	// GetProduct returns the product and true, or nil and false if the id does not resolve.
	GetProduct(ctx context.Context, id int64) (*domain.Product, bool, error)

	// GetProductForUpdate is GetProduct with the row locked until the surrounding
	// transaction ends. It must be called with a transactional context.
	GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, bool, error)

	// ListProducts returns one page of products ordered by id, and the total count.
	ListProducts(ctx context.Context, page domain.Pagination, listedOnly bool) ([]domain.Product, int, error)

	// DecrementStock removes quantity units from the product's stock.
	// Returns ErrInsufficientStock, leaving stock unchanged, if fewer units are available.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}
