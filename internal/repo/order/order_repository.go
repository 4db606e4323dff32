package order

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Filter narrows an order listing. Zero fields match every order.
type Filter struct {
	UserID  int64
	OrderNo string
}

// Repository defines persistence of orders and their lines.
type Repository interface {
	// CreateOrder inserts o together with o.Lines and sets every generated ID.
	CreateOrder(ctx context.Context, o *domain.Order) error

	// GetOrder returns the order with its lines, or nil and false if the id does not resolve.
	GetOrder(ctx context.Context, id int64) (*domain.Order, bool, error)

	// ListOrders returns one page of orders, newest first, and the total count.
	// Lines are not loaded.
	ListOrders(ctx context.Context, filter Filter, page domain.Pagination) ([]domain.Order, int, error)

	// SetStatus overwrites the order status. Returns ErrOrderNotFound if the id does not resolve.
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}
