package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository port to PostgreSQL. lockTimeout bounds
// how long a transaction waits for a locked balance or expense row.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BalanceRepo:    newPgxBalanceRepository(dbPool),
		ExpenseRepo:    newPgxExpenseRepository(dbPool, false),
		MembershipRepo: newPgxMembershipRepository(dbPool),
		EventRepo:      newPgxLedgerEventRepository(dbPool),
		TxManager:      newPgxTxManager(dbPool, lockTimeout),
	}
}
