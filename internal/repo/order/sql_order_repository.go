package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/sqldb"
)

const orderColumns = "id, user_id, order_no, total_amount, status, shipping_address, created_at, updated_at"

// SQLOrderRepository implements Repository on the shared SQL storage backend.
type SQLOrderRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLOrderRepository)(nil)

// NewSQLOrderRepository creates an order repository on db.
func NewSQLOrderRepository(db *sqldb.DB) *SQLOrderRepository {
	return &SQLOrderRepository{
		db:  db,
		log: logging.GetLogger("repo.order.sql_order_repository"),
	}
}

// CreateOrder implements Repository.CreateOrder.
func (r *SQLOrderRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	o.UpdatedAt = o.CreatedAt

	return r.db.InTx(ctx, func(ctx context.Context) error {
		runner := r.db.Runner(ctx)

		err := runner.QueryRowContext(ctx, r.db.Rebind(`
			INSERT INTO orders (user_id, order_no, total_amount, status, shipping_address, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			o.UserID,
			o.OrderNo,
			o.TotalAmount,
			string(o.Status),
			o.ShippingAddress,
			sqldb.ToMillis(o.CreatedAt),
			sqldb.ToMillis(o.UpdatedAt),
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", r.db.WrapError(err))
		}

		for i := range o.Lines {
			line := &o.Lines[i]
			line.OrderID = o.ID

			err := runner.QueryRowContext(ctx, r.db.Rebind(`
				INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
				VALUES (?, ?, ?, ?, ?)
				RETURNING id`),
				line.OrderID,
				line.ProductID,
				line.Quantity,
				line.UnitPrice,
				line.Subtotal,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order line: %w", r.db.WrapError(err))
			}
		}

		r.log.DebugContext(ctx, "order inserted",
			"order_id", o.ID,
			"order_no", o.OrderNo,
			"lines", len(o.Lines),
		)

		return nil
	})
}

// GetOrder implements Repository.GetOrder.
func (r *SQLOrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, bool, error) {
	runner := r.db.Runner(ctx)

	o, err := scanOrder(runner.QueryRowContext(ctx,
		r.db.Rebind("SELECT "+orderColumns+" FROM orders WHERE id = ?"),
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query order: %w", r.db.WrapError(err))
	}

	rows, err := runner.QueryContext(ctx, r.db.Rebind(`
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_lines
		WHERE order_id = ?
		ORDER BY product_id, id`),
		id,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query order lines: %w", r.db.WrapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine

		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPrice,
			&line.Subtotal,
		); err != nil {
			return nil, false, fmt.Errorf("scan order line: %w", r.db.WrapError(err))
		}

		o.Lines = append(o.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate order lines: %w", r.db.WrapError(err))
	}

	return o, true, nil
}

// ListOrders implements Repository.ListOrders.
func (r *SQLOrderRepository) ListOrders(
	ctx context.Context,
	filter Filter,
	page domain.Pagination,
) ([]domain.Order, int, error) {
	var (
		where []string
		args  []any
		total int
	)

	if filter.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}

	if filter.OrderNo != "" {
		where = append(where, "order_no = ?")
		args = append(args, filter.OrderNo)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	runner := r.db.Runner(ctx)

	if err := runner.QueryRowContext(ctx,
		r.db.Rebind("SELECT COUNT(*) FROM orders"+cond), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", r.db.WrapError(err))
	}

	rows, err := runner.QueryContext(ctx,
		r.db.Rebind("SELECT "+orderColumns+" FROM orders"+cond+
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"),
		append(args, page.PageSize, page.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", r.db.WrapError(err))
	}
	defer rows.Close()

	var orders []domain.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", r.db.WrapError(err))
		}

		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", r.db.WrapError(err))
	}

	return orders, total, nil
}

// SetStatus implements Repository.SetStatus.
func (r *SQLOrderRepository) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		res, err := r.db.Runner(ctx).ExecContext(ctx,
			r.db.Rebind("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?"),
			string(status),
			sqldb.ToMillis(time.Now()),
			id,
		)
		if err != nil {
			return fmt.Errorf("update order status: %w", r.db.WrapError(err))
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", r.db.WrapError(err))
		} else if n == 0 {
			return domain.ErrOrderNotFound
		}

		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                    domain.Order
		status               string
		createdAt, updatedAt int64
	)

	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNo,
		&o.TotalAmount,
		&status,
		&o.ShippingAddress,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}

	o.Status = domain.OrderStatus(status)
	o.CreatedAt = sqldb.FromMillis(createdAt)
	o.UpdatedAt = sqldb.FromMillis(updatedAt)

	return &o, nil
}
