// Package sqlite implements the repository ports on an embedded SQLite database.
// Write transactions start with BEGIN IMMEDIATE, so writers are serialized by the
// database lock and a busy database surfaces as apperrors.ErrConflict.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/mattn/go-sqlite3"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	DB querier
}

// withTx runs fn in a transaction when the repository sits on the pool, and directly
// when it is already bound to one.
func (r *BaseRepository) withTx(ctx context.Context, fn func(q querier) error) error {
	db, ok := r.DB.(*sql.DB)
	if !ok {
		return fn(r.DB)
	}
	return runTx(ctx, db, fn)
}

func runTx(ctx context.Context, db *sql.DB, fn func(q querier) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// mapSQLiteError translates driver errors into application errors.
func mapSQLiteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
			return apperrors.NewAppError(409, msg, fmt.Errorf("%w: %s", apperrors.ErrConflict, sqliteErr.Error()))
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return apperrors.NewAppError(409, msg, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, sqliteErr.Error()))
		}
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) || errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return apperrors.NewAppError(500, msg, err)
}
