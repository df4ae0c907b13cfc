package repository

import "strings"

// IsUniqueConstraintError reports whether the error stems from a SQLite
// unique constraint violation. Uniqueness races on derived artifacts are
// expected under concurrent regeneration and the losing write is simply
// dropped.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
