package cart

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/sqldb"
)

// SQLCartRepository implements Repository on the shared SQL storage backend.
type SQLCartRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLCartRepository)(nil)

// NewSQLCartRepository creates a cart repository on db.
func NewSQLCartRepository(db *sqldb.DB) *SQLCartRepository {
	return &SQLCartRepository{
		db:  db,
		log: logging.GetLogger("repo.cart.sql_cart_repository"),
	}
}

// AddLine implements Repository.AddLine.
func (r *SQLCartRepository) AddLine(
	ctx context.Context,
	userID, productID int64,
	quantity int,
) (*domain.CartLine, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	line := &domain.CartLine{
		UserID:    userID,
		ProductID: productID,
		UpdatedAt: now,
	}

	err := r.db.InTx(ctx, func(ctx context.Context) error {
		var createdAt int64

		err := r.db.Runner(ctx).QueryRowContext(ctx, r.db.Rebind(`
			INSERT INTO cart_lines (user_id, product_id, quantity, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, product_id) DO UPDATE
			SET quantity = cart_lines.quantity + excluded.quantity, updated_at = excluded.updated_at
			RETURNING id, quantity, created_at`),
			userID,
			productID,
			quantity,
			sqldb.ToMillis(now),
			sqldb.ToMillis(now),
		).Scan(&line.ID, &line.Quantity, &createdAt)
		if err != nil {
			return fmt.Errorf("upsert cart line: %w", r.db.WrapError(err))
		}

		line.CreatedAt = sqldb.FromMillis(createdAt)

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.DebugContext(ctx, "cart line added",
		"line_id", line.ID,
		"product_id", productID,
		"quantity", line.Quantity,
	)

	return line, nil
}

// SetQuantity implements Repository.SetQuantity.
func (r *SQLCartRepository) SetQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		res, err := r.db.Runner(ctx).ExecContext(ctx, r.db.Rebind(`
			UPDATE cart_lines SET quantity = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`),
			quantity,
			sqldb.ToMillis(time.Now()),
			lineID,
			userID,
		)
		if err != nil {
			return fmt.Errorf("update cart line: %w", r.db.WrapError(err))
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", r.db.WrapError(err))
		} else if n == 0 {
			return domain.ErrCartLineNotFound
		}

		return nil
	})
}

// RemoveLine implements Repository.RemoveLine.
func (r *SQLCartRepository) RemoveLine(ctx context.Context, userID, lineID int64) error {
	return r.delete(ctx, "DELETE FROM cart_lines WHERE id = ? AND user_id = ?", lineID, userID)
}

// Clear implements Repository.Clear.
func (r *SQLCartRepository) Clear(ctx context.Context, userID int64) error {
	return r.delete(ctx, "DELETE FROM cart_lines WHERE user_id = ?", userID)
}

func (r *SQLCartRepository) delete(ctx context.Context, query string, args ...any) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.Runner(ctx).ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("delete cart lines: %w", r.db.WrapError(err))
		}

		return nil
	})
}

// ListLines implements Repository.ListLines.
func (r *SQLCartRepository) ListLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := r.db.Runner(ctx).QueryContext(ctx, r.db.Rebind(`
		SELECT c.id, c.product_id, c.quantity, c.created_at, c.updated_at,
			p.id, p.name, p.description, p.price, p.stock, p.category_id, p.status, p.created_at, p.updated_at
		FROM cart_lines c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.product_id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", r.db.WrapError(err))
	}
	defer rows.Close()

	var lines []domain.CartLine

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", r.db.WrapError(err))
		}

		line.UserID = userID
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", r.db.WrapError(err))
	}

	return lines, nil
}

func scanLine(rows *sql.Rows) (domain.CartLine, error) {
	var (
		line                 domain.CartLine
		createdAt, updatedAt int64

		productID, categoryID              sql.NullInt64
		stock                              sql.NullInt64
		name, description, status          sql.NullString
		productCreatedAt, productUpdatedAt sql.NullInt64
		price                              decimal.NullDecimal
	)

	if err := rows.Scan(
		&line.ID,
		&line.ProductID,
		&line.Quantity,
		&createdAt,
		&updatedAt,
		&productID,
		&name,
		&description,
		&price,
		&stock,
		&categoryID,
		&status,
		&productCreatedAt,
		&productUpdatedAt,
	); err != nil {
		return line, err //nolint:wrapcheck
	}

	line.CreatedAt = sqldb.FromMillis(createdAt)
	line.UpdatedAt = sqldb.FromMillis(updatedAt)

	if productID.Valid {
		line.Product = &domain.Product{
			ID:          productID.Int64,
			Name:        name.String,
			Description: description.String,
			Price:       price.Decimal,
			Stock:       int(stock.Int64),
			CategoryID:  categoryID.Int64,
			Status:      domain.ProductStatus(status.String),
			CreatedAt:   sqldb.FromMillis(productCreatedAt.Int64),
			UpdatedAt:   sqldb.FromMillis(productUpdatedAt.Int64),
		}
	}

	return line, nil
}
