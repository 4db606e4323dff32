package cartsvc

import (
	"fmt"
	"net/http"

	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport serves the cart of the authenticated user.
type HTTPTransport struct {
	cartSvc  *CartService
	verifier http_.TokenVerifier
	log      logging.Logger
	mux      *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a cart transport. Every route requires a token accepted by verifier.
func NewHTTPTransport(cartSvc *CartService, verifier http_.TokenVerifier) *HTTPTransport {
	ht := &HTTPTransport{
		cartSvc:  cartSvc,
		verifier: verifier,
		log:      logging.GetLogger("svc.cartsvc.http_transport"),
		mux:      http.NewServeMux(),
	}
	ht.RegisterRoutes(ht.mux)

	return ht
}

// RegisterRoutes mounts the cart endpoints:
//   - GET /api/cart: get the cart
//   - POST /api/cart: add a product
//   - DELETE /api/cart: empty the cart
//   - PUT /api/cart/{id}: change a line's quantity
//   - DELETE /api/cart/{id}: remove a line
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	authorize := http_.Authorize(ht.verifier, ht.log)

	mux.Handle("GET /api/cart", authorize(http_.Handle(ht.log, "get cart", ht.handleGet)))
	mux.Handle("POST /api/cart", authorize(http_.Handle(ht.log, "add cart item", ht.handleAdd)))
	mux.Handle("DELETE /api/cart", authorize(http_.Handle(ht.log, "clear cart", ht.handleClear)))
	mux.Handle("PUT /api/cart/{id}", authorize(http_.Handle(ht.log, "set cart quantity", ht.handleSetQuantity)))
	mux.Handle("DELETE /api/cart/{id}", authorize(http_.Handle(ht.log, "remove cart item", ht.handleRemove)))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	cart, err := ht.cartSvc.GetCart(r.Context(), userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, cart)
}

// Expects form parameters: productId and optionally quantity (default 1).
func (ht *HTTPTransport) handleAdd(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	productID, err := http_.RequiredFormInt64(r, "productId")
	if err != nil {
		return err
	}

	quantity, err := http_.FormInt(r, "quantity", 1)
	if err != nil {
		return err
	}

	line, err := ht.cartSvc.AddItem(r.Context(), userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, line)
}

func (ht *HTTPTransport) handleClear(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	if err := ht.cartSvc.Clear(r.Context(), userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// Expects form parameter: quantity.
func (ht *HTTPTransport) handleSetQuantity(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	lineID, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	quantity, err := http_.RequiredFormInt(r, "quantity")
	if err != nil {
		return err
	}

	if err := ht.cartSvc.SetQuantity(r.Context(), userID, lineID, quantity); err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

func (ht *HTTPTransport) handleRemove(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	lineID, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	if err := ht.cartSvc.RemoveItem(r.Context(), userID, lineID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
