// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import "strings"

// IsSQLiteBusy reports whether err is a SQLITE_BUSY error, raised when the
// database is locked by another connection.
func IsSQLiteBusy(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLocked reports whether err is a "database is locked" error.
func IsSQLiteLocked(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteConflict reports whether err is either form of SQLite concurrency
// error. Both typically warrant a retry with backoff.
func IsSQLiteConflict(err error) bool {
	return IsSQLiteBusy(err) || IsSQLiteLocked(err)
}
