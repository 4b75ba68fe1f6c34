package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Matches both Postgres and sqlite error text so the
// check works under the in-memory test driver as well.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
