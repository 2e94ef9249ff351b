package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNoRows             = errors.New("health query returned no rows")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrAuthentication     = errors.New("database authentication failed")
	ErrDatabaseNotReady   = errors.New("database is not accepting connections")
	ErrTimeout            = errors.New("database health query timed out")
)

type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// HandlePgxError classifies driver errors into the sentinels above so that a
// failed probe reads well in a health report.
func HandlePgxError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return WrapError(op, ErrNoRows)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(op, fmt.Errorf("%w: %w", ErrTimeout, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28000", "28P01":
			return WrapError(op, ErrAuthentication)
		case "57P01", "57P02", "57P03":
			return WrapError(op, ErrDatabaseNotReady)
		case "08000", "08001", "08003", "08004", "08006":
			return WrapError(op, ErrDatabaseConnection)
		default:
			return WrapError(op, fmt.Errorf("database error [%s]: %s", pgErr.Code, pgErr.Message))
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return WrapError(op, fmt.Errorf("%w: %v", ErrDatabaseConnection, connectErr.Unwrap()))
	}

	return WrapError(op, err)
}

func IsConnectionError(err error) bool {
	return errors.Is(err, ErrDatabaseConnection)
}
