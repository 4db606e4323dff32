package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/util/encoding"
)

var (
	// ErrOrderNotFound is returned when an order id does not resolve.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidOrderStatus is returned for unknown status values.
	ErrInvalidOrderStatus = errors.New("invalid order status")
	// ErrInvalidAddress is returned when checkout is attempted without a shipping address.
	ErrInvalidAddress = errors.New("shipping address required")
)

// OrderStatus is the lifecycle state of an order.
// Any status may be set to any other; no transition rules are enforced.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// ParseOrderStatus validates a status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPendingPayment,
		OrderStatusPaid,
		OrderStatusShipped,
		OrderStatusCompleted,
		OrderStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, s)
	}
}

// Order is the immutable snapshot of a checkout. Only Status changes after creation.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	OrderNo         string          `json:"orderNo"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Lines []OrderLine `json:"lines,omitempty"`
}

// OrderLine records a purchased product with the price paid at checkout time.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewOrderLine captures unitPrice and derives the subtotal.
func NewOrderLine(productID int64, quantity int, unitPrice decimal.Decimal) OrderLine {
	return OrderLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// NewOrderNo returns a globally unique, time-ordered order number
// (a UUIDv7 in lowercase Crockford Base32).
func NewOrderNo() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new uuid: %w", err)
	}

	return encoding.EncodeCrockfordB32LC(id[:]), nil
}
