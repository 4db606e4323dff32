package sqldb

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownDriver is returned for drivers other than "sqlite" and "postgres".
var ErrUnknownDriver = errors.New("unknown database driver")

// Config holds configuration for the SQL storage backend.
type Config struct {
	// Driver selects the backend: "sqlite" (embedded, default) or "postgres"
	Driver string `env:"DRIVER" default:"sqlite"`

	// DSN is the SQLite database file path or a PostgreSQL connection string
	DSN string `env:"DSN" default:"var/storage/storefront.db"`

	// MaxOpenConns limits the size of the connection pool
	MaxOpenConns int `env:"MAX_OPEN_CONNS" default:"10"`

	// ConnMaxLifetime is the maximum time a pooled connection is reused
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" default:"5m"`

	// BusyTimeout is how long SQLite waits for a competing writer before failing with SQLITE_BUSY
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" default:"5s"`
}

// Validate implements config.Validator.
func (c Config) Validate() error {
	if _, ok := dialects[c.Driver]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}

	return nil
}
