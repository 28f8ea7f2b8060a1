package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/learnpath/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"
)

// Named constraints declared by the migrations.
const (
	constraintScheduleResourceDate = "uq_schedules_resource_date"
	constraintModulePathOrder      = "uq_modules_path_order"
	constraintResourceModuleOrder  = "uq_resources_module_order"
)

// uniqueConstraintErrors maps named unique constraints to their specific
// store errors. Unlisted constraints map to store.ErrDuplicate.
var uniqueConstraintErrors = map[string]error{
	constraintScheduleResourceDate: store.ErrDuplicateSchedule,
	constraintModulePathOrder:      store.ErrDuplicateOrderIndex,
	constraintResourceModuleOrder:  store.ErrDuplicateOrderIndex,
}

// MapError maps a database error to the store error taxonomy.
//
// Mapped errors carry only the constraint or column name; the driver error
// itself is not wrapped so that query text, values and server details cannot
// escape the persistence layer. Errors without a mapping, including context
// cancellation, are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if specific, ok := uniqueConstraintErrors[pgErr.ConstraintName]; ok {
				return specific
			}
			return fmt.Errorf("%w: unique constraint %s", store.ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolationCode:
			return fmt.Errorf(
				"%w: foreign key violation (%s)",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s)",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s)",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
			)
		}
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected examines the number of rows affected by an UPDATE or
// DELETE. If no rows were affected it returns notFound (store.ErrNotFound when
// notFound is nil).
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}

// invalidEntity wraps a domain validation failure into the store taxonomy
// while keeping the domain sentinel reachable through errors.Is.
func invalidEntity(err error) error {
	return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
}
