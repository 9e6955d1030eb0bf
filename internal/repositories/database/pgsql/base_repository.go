package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so a repository can run against
// the pool or inside an open transaction without knowing which.
type dbtx interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgreSQL error codes treated as transient conflicts.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	DB dbtx
}

// withTx runs fn in a transaction. On the pool this is a real transaction; inside an
// existing one pgx turns it into a savepoint.
func (r *BaseRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, r.DB, fn)
}

// mapPgError translates driver errors into application errors. msg describes the
// operation that failed.
func mapPgError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return apperrors.NewAppError(409, msg, fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Message))
		case pgUniqueViolation:
			return apperrors.NewAppError(409, msg, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.ConstraintName))
		}
	}
	// Errors already carrying an application sentinel pass through untouched.
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) || isAppSentinel(err) {
		return err
	}
	return apperrors.NewAppError(500, msg, err)
}

func isAppSentinel(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound, apperrors.ErrValidation, apperrors.ErrDuplicate,
		apperrors.ErrInvalidOperation, apperrors.ErrForbidden, apperrors.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
