package ordersvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/util/encoding"
)

// OrderService answers order queries and applies administrative status changes.
type OrderService struct {
	cfg    OrderConfig
	orders order.Repository
	log    logging.Logger
}

// NewOrderService creates an order query service.
func NewOrderService(orders order.Repository, cfg OrderConfig) *OrderService {
	return &OrderService{
		cfg:    cfg,
		orders: orders,
		log:    logging.GetLogger("svc.ordersvc.order_service"),
	}
}

// ListOrders returns one page of the user's orders, newest first.
func (s *OrderService) ListOrders(
	ctx context.Context,
	userID int64,
	page, pageSize int,
) (domain.Page[domain.Order], error) {
	return s.list(ctx, order.Filter{UserID: userID}, page, pageSize)
}

// ListAllOrders returns one page of the orders of all users, newest first.
// Access control for this listing is left to the caller.
func (s *OrderService) ListAllOrders(ctx context.Context, page, pageSize int) (domain.Page[domain.Order], error) {
	return s.list(ctx, order.Filter{}, page, pageSize)
}

func (s *OrderService) list(
	ctx context.Context,
	filter order.Filter,
	page, pageSize int,
) (domain.Page[domain.Order], error) {
	pagination, err := domain.NewPagination(page, pageSize, s.cfg.MaxPageSize)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	orders, total, err := s.orders.ListOrders(ctx, filter, pagination)
	if err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}

	return domain.NewPage(orders, total, pagination), nil
}

// GetOrder returns one of the user's orders with its lines.
// Orders of other users are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	o, ok, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	} else if !ok || o.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}

	return o, nil
}

// FindOrder returns one of the user's orders by its order number. The number is matched
// case-insensitively and with the usual Crockford transcription fixes (O for 0, I and L for 1).
func (s *OrderService) FindOrder(ctx context.Context, userID int64, orderNo string) (*domain.Order, error) {
	orderNo = encoding.NormalizeCrockfordB32LC(orderNo)
	if orderNo == "" {
		return nil, domain.ErrOrderNotFound
	}

	orders, _, err := s.orders.ListOrders(ctx,
		order.Filter{UserID: userID, OrderNo: orderNo},
		domain.Pagination{Page: 1, PageSize: 1},
	)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	} else if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}

	return s.GetOrder(ctx, userID, orders[0].ID)
}

// SetStatus overwrites the status of an order. Any known status may follow any other.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (err error) {
	log := s.log.With(logging.Group("order", "id", orderID, "status", status))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "set order status failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "order status set")
		}
	}()

	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return err
	}

	if err := s.orders.SetStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	return nil
}
