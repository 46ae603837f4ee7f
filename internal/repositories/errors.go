package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no row matches; callers recover locally
// by falling back to an unassigned/empty value.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on a uniqueness violation (duplicate ticket
// number, concurrent create of the same identity key); callers recover
// by re-fetching the row that won.
var ErrConflict = errors.New("conflict")

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// mapError translates driver errors into the store's error taxonomy
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// DescribePersistenceError turns a store failure into actionable text,
// distinguishing a missing migration from a permission problem. Errors
// the database had no part in pass through unchanged.
func DescribePersistenceError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "42703": // undefined_table, undefined_column
			return "database schema out of date, run migrations: " + pgErr.Message
		case "42501", "28000": // insufficient_privilege, invalid_authorization
			return "database permission denied: " + pgErr.Message
		default:
			return "storage error: " + pgErr.Message
		}
	}
	if strings.Contains(err.Error(), "connect") {
		return "database unreachable: " + err.Error()
	}
	return err.Error()
}
