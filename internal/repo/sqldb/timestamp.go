package sqldb

import "time"

// Timestamps are stored as unix milliseconds in BIGINT columns on every backend.

// ToMillis converts t for storage.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored timestamp back into UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
