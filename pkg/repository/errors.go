package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/textkernel/tx-go/pkg/faults"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrNotFound wraps sql.ErrNoRows and zero-row updates.
	ErrNotFound = fmt.Errorf("%w: no matching row", faults.ErrNotFound)
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate row")
	// ErrReference reports a foreign key violation.
	ErrReference = fmt.Errorf("%w: referenced row does not exist", faults.ErrInvalidArgument)
)

// MapError translates driver errors into the package sentinels, keeping the
// original error in the chain. Unrecognized errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %w", ErrDuplicate, pgErr.ConstraintName, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s: %w", ErrReference, pgErr.ConstraintName, err)
		}
	}

	return err
}
