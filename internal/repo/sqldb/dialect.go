package sqldb

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/storefront/internal/domain"
)

// dialect captures the differences between the supported SQL backends.
type dialect struct {
	name       string
	driverName string

	// numbered placeholders ($1, $2, ...) instead of ?
	numberedParams bool
	// suffix appended to SELECTs that must lock the selected rows
	lockClause string
	// writes are serialized in-process; the backend allows a single writer only
	singleWriter bool

	// DDL type names
	idType    string
	blobType  string
	moneyType string

	dsn      func(cfg Config) string
	classify func(err error) error
}

//nolint:gochecknoglobals
var dialects = map[string]dialect{
	"sqlite": {
		name:         "sqlite",
		driverName:   "sqlite",
		lockClause:   "",
		singleWriter: true,
		idType:       "INTEGER PRIMARY KEY AUTOINCREMENT",
		blobType:     "BLOB",
		moneyType:    "TEXT",
		dsn:          sqliteDSN,
		classify:     classifySQLiteError,
	},
	"postgres": {
		name:           "postgres",
		driverName:     "postgres",
		numberedParams: true,
		lockClause:     " FOR UPDATE",
		idType:         "BIGSERIAL PRIMARY KEY",
		blobType:       "BYTEA",
		moneyType:      "NUMERIC(14, 2)",
		dsn:            func(cfg Config) string { return cfg.DSN },
		classify:       classifyPostgresError,
	},
}

// sqliteDSN turns a file path into a modernc.org/sqlite DSN. Every connection of the pool
// gets the busy timeout, WAL journaling and foreign keys, and transactions start with
// BEGIN IMMEDIATE so that the write lock is taken before the first read.
func sqliteDSN(cfg Config) string {
	if strings.Contains(cfg.DSN, "?") {
		return cfg.DSN
	}

	params := url.Values{}
	params.Add("_pragma", "busy_timeout("+strconv.FormatInt(cfg.BusyTimeout.Milliseconds(), 10)+")")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_txlock", "immediate")

	return "file:" + strings.TrimPrefix(cfg.DSN, "file:") + "?" + params.Encode()
}

func (d dialect) rebind(query string) string {
	if !d.numberedParams {
		return query
	}

	var (
		out strings.Builder
		n   int
	)

	out.Grow(len(query) + 8)

	for _, r := range query {
		if r == '?' {
			n++
			out.WriteString("$" + strconv.Itoa(n))

			continue
		}

		out.WriteRune(r)
	}

	return out.String()
}

func classifySQLiteError(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return nil
	}

	switch code := liteErr.Code(); {
	case code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, code == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return errUniqueViolation
	case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
		return domain.ErrStorageConflict
	default:
		return nil
	}
}

func classifyPostgresError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		return errUniqueViolation
	case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
		return domain.ErrStorageConflict
	default:
		return nil
	}
}

// errUniqueViolation marks errors caused by a UNIQUE or PRIMARY KEY constraint.
// Repositories translate it into their domain specific "already exists" error.
var errUniqueViolation = errors.New("unique violation")

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, errUniqueViolation)
}

func unknownDriver(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownDriver, name)
}
