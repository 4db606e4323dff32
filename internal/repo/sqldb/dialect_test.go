package sqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	query := "SELECT id FROM orders WHERE user_id = ? AND status = ? LIMIT ? OFFSET ?"

	assert.Equal(t, query, dialects["sqlite"].rebind(query))
	assert.Equal(t,
		"SELECT id FROM orders WHERE user_id = $1 AND status = $2 LIMIT $3 OFFSET $4",
		dialects["postgres"].rebind(query),
	)
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	dsn := sqliteDSN(Config{DSN: "var/storage/storefront.db", BusyTimeout: 2 * time.Second})

	assert.Contains(t, dsn, "file:var/storage/storefront.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "busy_timeout%282000%29")

	custom := "file:test.db?mode=memory"
	assert.Equal(t, custom, sqliteDSN(Config{DSN: custom}))
}

func TestForUpdate(t *testing.T) {
	t.Parallel()

	pg := &DB{dialect: dialects["postgres"]}
	lite := &DB{dialect: dialects["sqlite"]}

	assert.Equal(t, "SELECT 1 FOR UPDATE", pg.ForUpdate("SELECT 1"))
	assert.Equal(t, "SELECT 1", lite.ForUpdate("SELECT 1"))
}
