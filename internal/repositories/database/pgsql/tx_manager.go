package pgsql

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTxManager opens pool transactions and hands out repositories bound to them.
type PgxTxManager struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func newPgxTxManager(pool *pgxpool.Pool, lockTimeout time.Duration) *PgxTxManager {
	return &PgxTxManager{pool: pool, lockTimeout: lockTimeout}
}

var _ portsrepo.TransactionManager = (*PgxTxManager)(nil)

// WithinTx runs fn in a READ COMMITTED transaction. Row locks taken inside it wait at
// most lockTimeout; a timeout surfaces as apperrors.ErrConflict.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	err := pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if m.lockTimeout > 0 {
			if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())); err != nil {
				return err
			}
		}
		return fn(ctx, portsrepo.TxRepositories{
			Balances: newPgxBalanceRepository(tx),
			Expenses: newPgxExpenseRepository(tx, true),
		})
	})
	return mapPgError(err, "transaction failed")
}
