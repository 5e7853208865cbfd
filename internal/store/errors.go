package store

import "strings"

// isLockConflict reports whether err is one of the SQLite concurrency
// errors (SQLITE_BUSY or "database is locked") that warrant a retry.
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
