package ordersvc

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/infra/metrics"
	"github.com/mkrupp/storefront/internal/repo/cart"
	"github.com/mkrupp/storefront/internal/repo/catalog"
	"github.com/mkrupp/storefront/internal/repo/order"
)

const tracerName = "github.com/mkrupp/storefront/internal/svc/ordersvc"

// retryBackoff is the pause before the first retry; it grows linearly per attempt.
const retryBackoff = 10 * time.Millisecond

// CheckoutService converts carts into orders.
type CheckoutService struct {
	cfg      OrderConfig
	tx       TxRunner
	carts    cart.Repository
	products catalog.Repository
	orders   order.Repository
	log      logging.Logger
	tracer   trace.Tracer

	checkouts *prometheus.CounterVec
	retries   prometheus.Counter
	duration  prometheus.Observer
}

// NewCheckoutService creates a checkout service. All repositories must share the storage
// behind tx, so their writes join the checkout transaction.
func NewCheckoutService(
	tx TxRunner,
	carts cart.Repository,
	products catalog.Repository,
	orders order.Repository,
	cfg OrderConfig,
	registry *metrics.Registry,
) *CheckoutService {
	return &CheckoutService{
		cfg:      cfg,
		tx:       tx,
		carts:    carts,
		products: products,
		orders:   orders,
		log:      logging.GetLogger("svc.ordersvc.checkout_service"),
		tracer:   otel.Tracer(tracerName),

		checkouts: registry.Counter("checkouts_total",
			"Checkout attempts by outcome.",
			"outcome"),
		retries: registry.Counter("checkout_retries_total",
			"Checkout transactions retried after a storage conflict.").WithLabelValues(),
		duration: registry.Histogram("checkout_duration_seconds",
			"Checkout latency including retries.",
			nil).WithLabelValues(),
	}
}

// WithTracerProvider makes the service record its spans with tp instead of the global provider.
func (s *CheckoutService) WithTracerProvider(tp trace.TracerProvider) *CheckoutService {
	s.tracer = tp.Tracer(tracerName)

	return s
}

// Checkout places an order for everything in the user's cart in one transaction: it locks and
// checks each product, records the order with prices captured now, decrements stock and empties
// the cart. On any failure nothing is written. Storage conflicts are retried from scratch.
func (s *CheckoutService) Checkout(
	ctx context.Context,
	userID int64,
	shippingAddress string,
) (placed *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "ordersvc.Checkout", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	start := time.Now()
	log := s.log.With(logging.Group("checkout", "user_id", userID))

	defer func() {
		outcome := checkoutOutcome(err)

		s.checkouts.WithLabelValues(outcome).Inc()
		s.duration.Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.String("checkout.outcome", outcome))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			log.WarnContext(ctx, "checkout failed", "outcome", outcome, logging.Err(err))
		} else {
			span.SetAttributes(attribute.String("order.no", placed.OrderNo))
			log.InfoContext(ctx, "order placed",
				logging.Group("order", "id", placed.ID, "no", placed.OrderNo, "total", placed.TotalAmount.String()),
			)
		}

		span.End()
	}()

	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return nil, domain.ErrInvalidAddress
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CheckoutTimeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		placed, err = s.checkout(ctx, userID, shippingAddress)
		if err == nil || !errors.Is(err, domain.ErrStorageConflict) || attempt >= s.cfg.CheckoutRetries {
			return placed, err
		}

		s.retries.Inc()
		log.DebugContext(ctx, "retrying checkout", "attempt", attempt+1, logging.Err(err))

		select {
		case <-ctx.Done():
			return nil, errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}
}

func (s *CheckoutService) checkout(ctx context.Context, userID int64, shippingAddress string) (*domain.Order, error) {
	var placed *domain.Order

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		lines, err := s.carts.ListLines(ctx, userID)
		if err != nil {
			return fmt.Errorf("list cart: %w", err)
		} else if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		// Lock in a fixed order so concurrent checkouts cannot deadlock.
		slices.SortFunc(lines, func(a, b domain.CartLine) int {
			return cmp.Compare(a.ProductID, b.ProductID)
		})

		orderLines := make([]domain.OrderLine, 0, len(lines))
		total := decimal.Zero

		for _, line := range lines {
			product, ok, err := s.products.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("lock product: %w", err)
			} else if !ok || !product.Listed() {
				return fmt.Errorf("product %d: %w", line.ProductID, domain.ErrProductUnavailable)
			} else if product.Stock < line.Quantity {
				return fmt.Errorf("product %d: %w", line.ProductID, domain.ErrInsufficientStock)
			}

			orderLine := domain.NewOrderLine(product.ID, line.Quantity, product.Price)
			orderLines = append(orderLines, orderLine)
			total = total.Add(orderLine.Subtotal)
		}

		orderNo, err := domain.NewOrderNo()
		if err != nil {
			return fmt.Errorf("order no: %w", err)
		}

		placed = &domain.Order{
			UserID:          userID,
			OrderNo:         orderNo,
			TotalAmount:     total,
			Status:          domain.OrderStatusPendingPayment,
			ShippingAddress: shippingAddress,
			Lines:           orderLines,
		}

		if err := s.orders.CreateOrder(ctx, placed); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range orderLines {
			if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		if err := s.carts.Clear(ctx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return placed, nil
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, domain.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, domain.ErrStorageConflict):
		return "conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
