package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/sqldb"
)

const productColumns = "id, name, description, price, stock, category_id, status, created_at, updated_at"

// SQLCatalogRepository implements Repository on the shared SQL storage backend.
type SQLCatalogRepository struct {
	db *sqldb.DB
}

var _ Repository = (*SQLCatalogRepository)(nil)

// NewSQLCatalogRepository creates a catalog repository on db.
func NewSQLCatalogRepository(db *sqldb.DB) *SQLCatalogRepository {
	return &SQLCatalogRepository{db: db}
}

// CreateProduct implements Repository.CreateProduct.
func (r *SQLCatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	return r.db.InTx(ctx, func(ctx context.Context) error {
		err := r.db.Runner(ctx).QueryRowContext(ctx, r.db.Rebind(`
			INSERT INTO products (name, description, price, stock, category_id, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			p.Name,
			p.Description,
			p.Price,
			p.Stock,
			p.CategoryID,
			string(p.Status),
			sqldb.ToMillis(now),
			sqldb.ToMillis(now),
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert product: %w", r.db.WrapError(err))
		}

		p.CreatedAt = now
		p.UpdatedAt = now

		return nil
	})
}

// UpdateProduct implements Repository.UpdateProduct.
func (r *SQLCatalogRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	return r.db.InTx(ctx, func(ctx context.Context) error {
		res, err := r.db.Runner(ctx).ExecContext(ctx, r.db.Rebind(`
			UPDATE products
			SET name = ?, description = ?, price = ?, stock = ?, category_id = ?, status = ?, updated_at = ?
			WHERE id = ?`),
			p.Name,
			p.Description,
			p.Price,
			p.Stock,
			p.CategoryID,
			string(p.Status),
			sqldb.ToMillis(now),
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("update product: %w", r.db.WrapError(err))
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", r.db.WrapError(err))
		} else if n == 0 {
			return domain.ErrProductNotFound
		}

		p.UpdatedAt = now

		return nil
	})
}

// GetProduct implements Repository.GetProduct.
func (r *SQLCatalogRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, bool, error) {
	return r.getProduct(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
}

// GetProductForUpdate implements Repository.GetProductForUpdate.
func (r *SQLCatalogRepository) GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, bool, error) {
	return r.getProduct(ctx, r.db.ForUpdate("SELECT "+productColumns+" FROM products WHERE id = ?"), id)
}

func (r *SQLCatalogRepository) getProduct(ctx context.Context, query string, id int64) (*domain.Product, bool, error) {
	p, err := scanProduct(r.db.Runner(ctx).QueryRowContext(ctx, r.db.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query product: %w", r.db.WrapError(err))
	}

	return p, true, nil
}

// ListProducts implements Repository.ListProducts.
func (r *SQLCatalogRepository) ListProducts(
	ctx context.Context,
	page domain.Pagination,
	listedOnly bool,
) ([]domain.Product, int, error) {
	var (
		where string
		args  []any
		total int
	)

	if listedOnly {
		where = " WHERE status = ?"
		args = append(args, string(domain.ProductStatusListed))
	}

	runner := r.db.Runner(ctx)

	if err := runner.QueryRowContext(ctx,
		r.db.Rebind("SELECT COUNT(*) FROM products"+where), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", r.db.WrapError(err))
	}

	rows, err := runner.QueryContext(ctx,
		r.db.Rebind("SELECT "+productColumns+" FROM products"+where+" ORDER BY id LIMIT ? OFFSET ?"),
		append(args, page.PageSize, page.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", r.db.WrapError(err))
	}
	defer rows.Close()

	var products []domain.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", r.db.WrapError(err))
		}

		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", r.db.WrapError(err))
	}

	return products, total, nil
}

// DecrementStock implements Repository.DecrementStock. The update is conditional on the
// remaining stock, so it can never drive the counter below zero even without row locks.
func (r *SQLCatalogRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		res, err := r.db.Runner(ctx).ExecContext(ctx, r.db.Rebind(`
			UPDATE products
			SET stock = stock - ?, updated_at = ?
			WHERE id = ? AND stock >= ?`),
			quantity,
			sqldb.ToMillis(time.Now()),
			id,
			quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", r.db.WrapError(err))
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", r.db.WrapError(err))
		} else if n == 0 {
			return fmt.Errorf("product %d: %w", id, domain.ErrInsufficientStock)
		}

		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                    domain.Product
		status               string
		createdAt, updatedAt int64
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.CategoryID,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}

	p.Status = domain.ProductStatus(status)
	p.CreatedAt = sqldb.FromMillis(createdAt)
	p.UpdatedAt = sqldb.FromMillis(updatedAt)

	return &p, nil
}
