package cartsvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/cart"
	"github.com/mkrupp/storefront/internal/repo/catalog"
)

// CartService manages the shopping carts of authenticated users.
// Stock is not reserved or checked here; checkout does that.
type CartService struct {
	carts    cart.Repository
	products catalog.Repository
	log      logging.Logger
}

// NewCartService creates a cart service.
func NewCartService(carts cart.Repository, products catalog.Repository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		log:      logging.GetLogger("svc.cartsvc.cart_service"),
	}
}

// AddItem puts quantity units of a listed product into the user's cart,
// merging with an existing line for the same product.
func (s *CartService) AddItem(
	ctx context.Context,
	userID, productID int64,
	quantity int,
) (_ *domain.CartLine, err error) {
	log := s.log.With(logging.Group("cart", "product_id", productID, "quantity", quantity))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "add item failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "item added")
		}
	}()

	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, ok, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	} else if !ok {
		return nil, domain.ErrProductNotFound
	} else if !product.Listed() {
		return nil, domain.ErrProductUnavailable
	}

	line, err := s.carts.AddLine(ctx, userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("add line: %w", err)
	}

	line.Product = product

	return line, nil
}

// SetQuantity replaces the quantity of one of the user's cart lines.
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	if err := s.carts.SetQuantity(ctx, userID, lineID, quantity); err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}

	return nil
}

// RemoveItem deletes one of the user's cart lines. Removing an absent line succeeds.
func (s *CartService) RemoveItem(ctx context.Context, userID, lineID int64) error {
	if err := s.carts.RemoveLine(ctx, userID, lineID); err != nil {
		return fmt.Errorf("remove line: %w", err)
	}

	return nil
}

// Clear empties the user's cart. Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// GetCart returns the user's cart priced at current catalog prices.
func (s *CartService) GetCart(ctx context.Context, userID int64) (domain.Cart, error) {
	lines, err := s.carts.ListLines(ctx, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list lines: %w", err)
	}

	return domain.NewCart(lines), nil
}
