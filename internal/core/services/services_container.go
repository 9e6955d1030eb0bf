package services

import (
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// recorder may be nil, in which case no ledger events are recorded.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, recorder portssvc.LedgerEventRecorder) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Balance service first since the expense service applies its deltas
	container.Balance = NewBalanceService(
		repos.BalanceRepo,
		repos.TxManager,
		WithBalanceMembership(repos.MembershipRepo),
		WithBalanceEventRecorder(recorder),
		WithBalanceConflictRetries(cfg.ConflictMaxRetries),
		WithBalanceAmountTolerance(cfg.AmountTolerance),
	)

	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.TxManager,
		container.Balance,
		WithExpenseMembership(repos.MembershipRepo),
		WithExpenseEventRecorder(recorder),
		WithExpenseConflictRetries(cfg.ConflictMaxRetries),
		WithExpenseAmountTolerance(cfg.AmountTolerance),
	)

	return container
}
