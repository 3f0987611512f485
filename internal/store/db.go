package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finflowhq/finflow-backend/internal/errs"
)

// Postgres error codes this layer cares about.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// dbErr classifies a pgx error into the service-facing taxonomy. Aborted
// transactions (serialization failures, deadlocks) become retryable
// conflicts; everything else is an internal database error.
func dbErr(operation, message string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return errs.NewConflictError("operation aborted, retry")
		case codeUniqueViolation:
			return errs.NewAlreadyExistsError(message)
		}
	}
	return errs.NewDatabaseError(operation, message, err)
}

func errNoRows() error { return pgx.ErrNoRows }

// notFoundOr maps pgx.ErrNoRows to a NotFoundError with the given message.
func notFoundOr(operation, notFoundMsg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewNotFoundError(notFoundMsg)
	}
	return dbErr(operation, notFoundMsg, err)
}
