package sqlite

import (
	"context"
	"database/sql"

	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
)

// SQLiteTxManager runs transactions on a database opened with _txlock=immediate.
type SQLiteTxManager struct {
	db *sql.DB
}

func newSQLiteTxManager(db *sql.DB) *SQLiteTxManager {
	return &SQLiteTxManager{db: db}
}

var _ portsrepo.TransactionManager = (*SQLiteTxManager)(nil)

// WithinTx runs fn inside one transaction. Waiting longer than the busy timeout for
// the write lock is reported as apperrors.ErrConflict.
func (m *SQLiteTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	err := runTx(ctx, m.db, func(q querier) error {
		return fn(ctx, portsrepo.TxRepositories{
			Balances: newSQLiteBalanceRepository(q),
			Expenses: newSQLiteExpenseRepository(q),
		})
	})
	return mapSQLiteError(err, "transaction failed")
}
