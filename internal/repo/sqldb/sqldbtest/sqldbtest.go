// Package sqldbtest opens throwaway databases for tests.
package sqldbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrupp/storefront/internal/repo/sqldb"
)

// Open creates an empty SQLite database in a temporary directory that is removed
// together with the database when the test ends.
func Open(t *testing.T) *sqldb.DB {
	t.Helper()

	db, err := sqldb.Open(context.Background(), sqldb.Config{
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "storefront.db"),
		MaxOpenConns:    8,
		ConnMaxLifetime: time.Minute,
		BusyTimeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})

	return db
}
