package cart

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines persistence of cart lines. Every operation is scoped to one user;
// line ids owned by another user behave as if they did not exist.
type Repository interface {
	// AddLine adds quantity units of a product to the user's cart. If the product is
	// already in the cart the quantities are summed into the existing line.
	AddLine(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error)

	// SetQuantity replaces the quantity of a line. Returns ErrCartLineNotFound if the line
	// does not belong to the user.
	SetQuantity(ctx context.Context, userID, lineID int64, quantity int) error

	// RemoveLine deletes a line if it belongs to the user. Removing an absent line succeeds.
	RemoveLine(ctx context.Context, userID, lineID int64) error

	// Clear deletes every line of the user's cart.
	Clear(ctx context.Context, userID int64) error

	// ListLines returns the user's cart lines ordered by product id, each with its
	// current catalog entry attached when the product still exists.
	ListLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
}
