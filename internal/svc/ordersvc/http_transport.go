package ordersvc

import (
	"fmt"
	"net/http"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport serves checkout and order queries.
type HTTPTransport struct {
	checkoutSvc *CheckoutService
	orderSvc    *OrderService
	verifier    http_.TokenVerifier
	log         logging.Logger
	mux         *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates an order transport. Every route requires a token accepted by verifier.
func NewHTTPTransport(
	checkoutSvc *CheckoutService,
	orderSvc *OrderService,
	verifier http_.TokenVerifier,
) *HTTPTransport {
	ht := &HTTPTransport{
		checkoutSvc: checkoutSvc,
		orderSvc:    orderSvc,
		verifier:    verifier,
		log:         logging.GetLogger("svc.ordersvc.http_transport"),
		mux:         http.NewServeMux(),
	}
	ht.RegisterRoutes(ht.mux)

	return ht
}

// RegisterRoutes mounts the order endpoints:
//   - POST /api/orders: check out the cart
//   - GET /api/orders: list the caller's orders
//   - GET /api/orders/{id}: get one of the caller's orders with its lines
//   - GET /api/orders/by-no/{orderNo}: the same, addressed by order number
//   - GET /api/admin/orders: list all orders
//   - PUT /api/admin/orders/{id}/status: set an order's status
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	authorize := http_.Authorize(ht.verifier, ht.log)

	mux.Handle("POST /api/orders", authorize(http_.Handle(ht.log, "checkout", ht.handleCheckout)))
	mux.Handle("GET /api/orders", authorize(http_.Handle(ht.log, "list orders", ht.handleList)))
	mux.Handle("GET /api/orders/{id}", authorize(http_.Handle(ht.log, "get order", ht.handleGet)))
	mux.Handle("GET /api/orders/by-no/{orderNo}", authorize(http_.Handle(ht.log, "find order", ht.handleFind)))
	mux.Handle("GET /api/admin/orders", authorize(http_.Handle(ht.log, "list all orders", ht.handleListAll)))
	mux.Handle("PUT /api/admin/orders/{id}/status",
		authorize(http_.Handle(ht.log, "set order status", ht.handleSetStatus)))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// Expects form parameter: shippingAddress.
func (ht *HTTPTransport) handleCheckout(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	placed, err := ht.checkoutSvc.Checkout(r.Context(), userID, r.FormValue("shippingAddress"))
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	return http_.WriteJSON(w, http.StatusCreated, placed)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	page, pageSize, err := http_.PageParams(r)
	if err != nil {
		return err
	}

	orders, err := ht.orderSvc.ListOrders(r.Context(), userID, page, pageSize)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, orders)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	orderID, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	o, err := ht.orderSvc.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, o)
}

func (ht *HTTPTransport) handleFind(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	o, err := ht.orderSvc.FindOrder(r.Context(), userID, r.PathValue("orderNo"))
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, o)
}

func (ht *HTTPTransport) handleListAll(w http.ResponseWriter, r *http.Request) error {
	page, pageSize, err := http_.PageParams(r)
	if err != nil {
		return err
	}

	orders, err := ht.orderSvc.ListAllOrders(r.Context(), page, pageSize)
	if err != nil {
		return fmt.Errorf("list all orders: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, orders)
}

// Expects form parameter: status.
func (ht *HTTPTransport) handleSetStatus(w http.ResponseWriter, r *http.Request) error {
	orderID, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	value, err := http_.RequiredFormValue(r, "status")
	if err != nil {
		return err
	}

	status, err := domain.ParseOrderStatus(value)
	if err != nil {
		return err
	}

	if err := ht.orderSvc.SetStatus(r.Context(), orderID, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
