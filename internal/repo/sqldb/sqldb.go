package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// Runner is the subset of *sql.DB and *sql.Tx used by repositories.
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DB is a connection pool to the storage backend shared by all repositories.
// Transactions started with InTx travel in the context, so repository calls made with
// that context join the transaction.
type DB struct {
	db       *sql.DB
	dialect  dialect
	log      logging.Logger
	writeSem chan struct{} // go-sqlite does not support concurrent writes
}

// Open connects to the backend selected by cfg.Driver and creates the schema if needed.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, unknownDriver(cfg.Driver)
	}

	log := logging.GetLogger("repo.sqldb").With(
		logging.Group("db", "driver", d.name),
	)

	sqlDB, err := sql.Open(d.driverName, d.dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{
		db:       sqlDB,
		dialect:  d,
		log:      log,
		writeSem: make(chan struct{}, 1),
	}

	if err := db.migrate(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	log.DebugContext(ctx, "database ready")

	return db, nil
}

// Driver returns the name of the backend, "sqlite" or "postgres".
func (db *DB) Driver() string {
	return db.dialect.name
}

// Runner returns the transaction carried by ctx, or the pool if there is none.
func (db *DB) Runner(ctx context.Context) Runner {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}

	return db.db
}

// Rebind rewrites ? placeholders into the syntax of the backend.
func (db *DB) Rebind(query string) string {
	return db.dialect.rebind(query)
}

// ForUpdate appends the row locking clause of the backend to a SELECT.
// Backends with a single writer lock the whole database when the transaction begins
// and return the query unchanged.
func (db *DB) ForUpdate(query string) string {
	return query + db.dialect.lockClause
}

// InTx runs fn inside a transaction and commits if fn returns nil.
// If ctx already carries a transaction, fn joins it and commit is left to the outermost call.
// Any error or panic rolls back every write made through the context passed to fn, and so
// does ctx ending before the commit. Waiting for the SQLite writer also honours ctx.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	if db.dialect.singleWriter {
		select {
		case db.writeSem <- struct{}{}:
			defer func() { <-db.writeSem }()
		case <-ctx.Done():
			return fmt.Errorf("wait for writer: %w", ctx.Err())
		}
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return db.wrapTxError(ctx, fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		p := recover()

		if err != nil || p != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.log.ErrorContext(ctx, "rollback failed", logging.Err(rbErr))
			}
		}

		if p != nil {
			panic(p)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return db.wrapTxError(ctx, fmt.Errorf("commit tx: %w", err))
	}

	return nil
}

// wrapTxError reports a transaction that failed because ctx ended with the context's error
// instead of a storage failure. database/sql has rolled it back already.
func (db *DB) wrapTxError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}

	return db.WrapError(err)
}

// WrapError marks err as domain.ErrStorageFailure and, where the driver tells, adds a
// finer kind: domain.ErrStorageConflict for lost races the caller may retry or the unique
// violation marker checked by IsUniqueViolation. Nil stays nil.
func (db *DB) WrapError(err error) error {
	if err == nil {
		return nil
	}

	if kind := db.dialect.classify(err); kind != nil {
		if errors.Is(kind, domain.ErrStorageConflict) {
			return errors.Join(domain.ErrStorageConflict, domain.ErrStorageFailure, err)
		}

		return errors.Join(kind, domain.ErrStorageFailure, err)
	}

	return errors.Join(domain.ErrStorageFailure, err)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if err := db.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

type txContextKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*sql.Tx)

	return tx, ok
}
