package sqlite

import (
	"errors"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) ||
		hasConstraintMessage(err, "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint
// failure, i.e. the referenced user or post does not exist.
func isForeignKeyViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) ||
		hasConstraintMessage(err, "FOREIGN KEY constraint failed")
}

func hasConstraintCode(err error, codes ...int) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, code := range codes {
		if sqliteErr.Code() == code {
			return true
		}
	}
	return false
}

// hasConstraintMessage is the fallback for drivers built without extended
// result codes, where only the primary SQLITE_CONSTRAINT code is reported.
func hasConstraintMessage(err error, fragment string) bool {
	return err != nil && strings.Contains(err.Error(), fragment)
}
