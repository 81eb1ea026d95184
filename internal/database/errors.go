package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// isUniqueViolation reports whether err is the driver's unique-constraint
// violation, for either backend.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// storeErr wraps unexpected driver failures so callers can treat them as
// ErrStoreUnavailable with errors.Is. Row-level outcomes (no rows, unique
// violations) are mapped to their domain sentinels before reaching here.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", models.ErrStoreUnavailable, op, err)
}

// notFound translates sql.ErrNoRows into the given domain sentinel.
func notFound(err error, sentinel error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return storeErr(op, err)
}
