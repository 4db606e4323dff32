package sqldb

import (
	"context"
	"fmt"
	"strings"
)

//nolint:gochecknoglobals
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            {{id}},
		username      TEXT    NOT NULL UNIQUE,
		password_hash {{blob}} NOT NULL,
		email         TEXT    NOT NULL DEFAULT '',
		phone         TEXT    NOT NULL DEFAULT '',
		avatar        TEXT    NOT NULL DEFAULT '',
		status        TEXT    NOT NULL,
		created_at    BIGINT  NOT NULL,
		updated_at    BIGINT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          {{id}},
		name        TEXT      NOT NULL,
		description TEXT      NOT NULL DEFAULT '',
		price       {{money}} NOT NULL,
		stock       INTEGER   NOT NULL CHECK (stock >= 0),
		category_id BIGINT    NOT NULL DEFAULT 0,
		status      TEXT      NOT NULL,
		created_at  BIGINT    NOT NULL,
		updated_at  BIGINT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
		id         {{id}},
		user_id    BIGINT  NOT NULL REFERENCES users (id),
		product_id BIGINT  NOT NULL,
		quantity   INTEGER NOT NULL CHECK (quantity > 0),
		created_at BIGINT  NOT NULL,
		updated_at BIGINT  NOT NULL,
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               {{id}},
		user_id          BIGINT    NOT NULL REFERENCES users (id),
		order_no         TEXT      NOT NULL UNIQUE,
		total_amount     {{money}} NOT NULL,
		status           TEXT      NOT NULL,
		shipping_address TEXT      NOT NULL,
		created_at       BIGINT    NOT NULL,
		updated_at       BIGINT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_created ON orders (user_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id         {{id}},
		order_id   BIGINT    NOT NULL REFERENCES orders (id),
		product_id BIGINT    NOT NULL,
		quantity   INTEGER   NOT NULL CHECK (quantity > 0),
		unit_price {{money}} NOT NULL,
		subtotal   {{money}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS order_lines_order ON order_lines (order_id)`,
}

func (db *DB) migrate(ctx context.Context) error {
	replacer := strings.NewReplacer(
		"{{id}}", db.dialect.idType,
		"{{blob}}", db.dialect.blobType,
		"{{money}}", db.dialect.moneyType,
	)

	return db.InTx(ctx, func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := db.Runner(ctx).ExecContext(ctx, replacer.Replace(stmt)); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
		}

		return nil
	})
}
