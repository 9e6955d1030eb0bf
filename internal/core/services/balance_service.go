package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// balanceService implements the BalanceSvcFacade interface
type balanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepositoryFacade
	txManager   portsrepo.TransactionManager
	tolerance   decimal.Decimal
}

// BalanceServiceOption is a functional option for configuring the balance service
type BalanceServiceOption func(*balanceService)

// WithBalanceMembership adds the membership reader used for existence and access checks
func WithBalanceMembership(reader portsrepo.MembershipReader) BalanceServiceOption {
	return func(s *balanceService) {
		s.Membership = reader
	}
}

// WithBalanceEventRecorder adds the ledger event recorder
func WithBalanceEventRecorder(recorder portssvc.LedgerEventRecorder) BalanceServiceOption {
	return func(s *balanceService) {
		s.Events = recorder
	}
}

// WithBalanceConflictRetries sets how many times a conflicting transaction is retried
func WithBalanceConflictRetries(n int) BalanceServiceOption {
	return func(s *balanceService) {
		s.ConflictMaxRetries = n
	}
}

// WithBalanceAmountTolerance sets the allowed gap between total and share sum
func WithBalanceAmountTolerance(tolerance decimal.Decimal) BalanceServiceOption {
	return func(s *balanceService) {
		s.tolerance = tolerance
	}
}

// WithBalanceClock overrides the time source used to stamp rows
func WithBalanceClock(now func() time.Time) BalanceServiceOption {
	return func(s *balanceService) {
		s.Now = now
	}
}

// NewBalanceService creates a new balance service with the provided options
func NewBalanceService(balanceRepo portsrepo.BalanceRepositoryFacade, txManager portsrepo.TransactionManager, options ...BalanceServiceOption) portssvc.BalanceSvcFacade {
	svc := &balanceService{
		balanceRepo: balanceRepo,
		txManager:   txManager,
		tolerance:   domain.DefaultAmountTolerance,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure balanceService implements the BalanceSvcFacade interface
var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// =============================================================================
// ENGINE - caller-owned transaction
// =============================================================================

func (s *balanceService) applyDeltas(ctx context.Context, balances portsrepo.BalanceWriter, expenseID int64, deltas []accounting.Delta) error {
	now := s.now()
	for _, d := range deltas {
		if _, err := balances.UpsertBalance(ctx, d.Key, expenseID, now, domain.AddDelta(d.Amount)); err != nil {
			return fmt.Errorf("failed to update balance %s: %w", d.Key, err)
		}
	}
	s.LogDebug(ctx, "Balances updated",
		slog.Int64("expense_id", expenseID),
		slog.Int("rows", len(deltas)))
	return nil
}

func (s *balanceService) ApplyExpenseCreated(ctx context.Context, balances portsrepo.BalanceWriter, expense domain.Expense) error {
	if err := expense.Validate(s.tolerance); err != nil {
		return err
	}
	return s.applyDeltas(ctx, balances, expense.ExpenseID, accounting.ExpenseDeltas(expense))
}

func (s *balanceService) ApplyExpenseUpdated(ctx context.Context, balances portsrepo.BalanceWriter, old, updated domain.Expense) error {
	if old.ExpenseID != updated.ExpenseID {
		return fmt.Errorf("%w: cannot update expense %d with data of expense %d", apperrors.ErrInvalidOperation, old.ExpenseID, updated.ExpenseID)
	}
	if err := updated.Validate(s.tolerance); err != nil {
		return err
	}
	deltas := accounting.Combine(accounting.ReversalDeltas(old), accounting.ExpenseDeltas(updated))
	return s.applyDeltas(ctx, balances, updated.ExpenseID, deltas)
}

func (s *balanceService) ApplyExpenseDeleted(ctx context.Context, balances portsrepo.BalanceWriter, expense domain.Expense) error {
	return s.applyDeltas(ctx, balances, expense.ExpenseID, accounting.ReversalDeltas(expense))
}

func (s *balanceService) ApplyPaymentStatusChanged(ctx context.Context, balances portsrepo.BalanceWriter, expense domain.Expense, participantUserID int64, isPaid bool) error {
	p, ok := expense.Participant(participantUserID)
	if !ok {
		return fmt.Errorf("%w: user %d does not participate in expense %d", apperrors.ErrNotFound, participantUserID, expense.ExpenseID)
	}
	deltas := accounting.PaymentToggleDeltas(expense, p, isPaid)
	if len(deltas) == 0 {
		s.LogDebug(ctx, "Payment status change has no balance effect",
			slog.Int64("expense_id", expense.ExpenseID),
			slog.Int64("participant_id", participantUserID),
			slog.Bool("paid", isPaid))
		return nil
	}
	return s.applyDeltas(ctx, balances, expense.ExpenseID, deltas)
}

// =============================================================================
// LIFECYCLE - own transaction
// =============================================================================

func (s *balanceService) inTx(ctx context.Context, operation string, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	return s.withConflictRetry(ctx, operation, func() error {
		return s.txManager.WithinTx(ctx, fn)
	})
}

func (s *balanceService) OnExpenseCreated(ctx context.Context, expense domain.Expense) error {
	err := s.inTx(ctx, "expense_created", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return s.ApplyExpenseCreated(ctx, repos.Balances, expense)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply created expense", slog.Int64("expense_id", expense.ExpenseID))
		return err
	}
	s.record(ctx, domain.NewLedgerEvent(domain.EventExpenseCreated,
		domain.WithExpense(expense.ExpenseID),
		domain.WithActor(expense.LastUpdatedBy),
		domain.WithData("totalAmount", expense.TotalAmount.String())))
	return nil
}

func (s *balanceService) OnExpenseUpdated(ctx context.Context, old, updated domain.Expense) error {
	err := s.inTx(ctx, "expense_updated", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return s.ApplyExpenseUpdated(ctx, repos.Balances, old, updated)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply updated expense", slog.Int64("expense_id", updated.ExpenseID))
		return err
	}
	s.record(ctx, domain.NewLedgerEvent(domain.EventExpenseUpdated,
		domain.WithExpense(updated.ExpenseID),
		domain.WithActor(updated.LastUpdatedBy),
		domain.WithData("oldTotalAmount", old.TotalAmount.String()),
		domain.WithData("totalAmount", updated.TotalAmount.String())))
	return nil
}

func (s *balanceService) OnExpenseDeleted(ctx context.Context, expense domain.Expense) error {
	err := s.inTx(ctx, "expense_deleted", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return s.ApplyExpenseDeleted(ctx, repos.Balances, expense)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse deleted expense", slog.Int64("expense_id", expense.ExpenseID))
		return err
	}
	s.record(ctx, domain.NewLedgerEvent(domain.EventExpenseDeleted,
		domain.WithExpense(expense.ExpenseID),
		domain.WithActor(expense.LastUpdatedBy)))
	return nil
}

func (s *balanceService) OnPaymentStatusChanged(ctx context.Context, expense domain.Expense, participantUserID int64, isPaid bool) error {
	err := s.inTx(ctx, "payment_status_changed", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return s.ApplyPaymentStatusChanged(ctx, repos.Balances, expense, participantUserID, isPaid)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply payment status change",
			slog.Int64("expense_id", expense.ExpenseID),
			slog.Int64("participant_id", participantUserID))
		return err
	}
	s.record(ctx, domain.NewLedgerEvent(domain.EventPaymentStatusChanged,
		domain.WithExpense(expense.ExpenseID),
		domain.WithActor(expense.PayerID),
		domain.WithData("participantID", participantUserID),
		domain.WithData("paid", isPaid)))
	return nil
}

// =============================================================================
// RECALCULATION
// =============================================================================

// RecalculateAll clears every aggregate and replays all persisted expenses in one
// transaction, so readers see either the old or the rebuilt balances.
func (s *balanceService) RecalculateAll(ctx context.Context) (int, error) {
	logger := s.GetLogger(ctx)
	start := time.Now()

	var replayed int
	var cleared int64
	err := s.inTx(ctx, "recalculate_all", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		replayed = 0
		var err error
		cleared, err = repos.Balances.ClearAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear balances: %w", err)
		}
		expenses, err := repos.Expenses.ListAllExpenses(ctx)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		for _, e := range expenses {
			if err := s.applyDeltas(ctx, repos.Balances, e.ExpenseID, accounting.ExpenseDeltas(e)); err != nil {
				return fmt.Errorf("failed to replay expense %d: %w", e.ExpenseID, err)
			}
			replayed++
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Balance recalculation failed")
		return 0, err
	}

	logger.Info("Balances recalculated",
		slog.Int64("rows_cleared", cleared),
		slog.Int("expenses_replayed", replayed),
		slog.Duration("duration", time.Since(start)))
	s.record(ctx, domain.NewLedgerEvent(domain.EventBalancesRecalculated,
		domain.WithData("rowsCleared", cleared),
		domain.WithData("expensesReplayed", replayed)))
	return replayed, nil
}

// =============================================================================
// QUERIES
// =============================================================================

func (s *balanceService) GetUserBalanceSummary(ctx context.Context, userID int64) (*domain.UserBalanceSummary, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	var friends, groups []domain.BalanceAggregate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		friends, err = s.balanceRepo.ListFriendBalancesForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.balanceRepo.ListGroupBalancesForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to load balances for summary", slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to load balances for user %d: %w", userID, err)
	}

	net := decimal.Zero
	for _, a := range friends {
		net = net.Add(a.FromPerspective(userID))
	}
	for _, a := range groups {
		net = net.Add(a.FromPerspective(userID))
	}

	summary := domain.NewUserBalanceSummary(userID, net)
	s.LogDebug(ctx, "User balance summary computed",
		slog.Int64("user_id", userID),
		slog.String("net", net.String()))
	return &summary, nil
}

func (s *balanceService) GetFriendBalances(ctx context.Context, userID int64) ([]domain.FriendBalance, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.balanceRepo.ListFriendBalancesForUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list friend balances", slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list friend balances: %w", err)
	}
	out := make([]domain.FriendBalance, len(rows))
	for i, a := range rows {
		out[i] = domain.ToFriendBalance(userID, a)
	}
	return out, nil
}

func (s *balanceService) GetFriendBalance(ctx context.Context, userID, friendID int64) (*domain.FriendBalance, error) {
	if userID == friendID {
		return nil, fmt.Errorf("%w: a user has no balance with themselves", apperrors.ErrValidation)
	}
	if err := s.ensureUserExists(ctx, friendID); err != nil {
		return nil, err
	}

	row, err := s.balanceRepo.FindBalance(ctx, domain.FriendKey(userID, friendID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.FriendBalance{UserID: userID, FriendID: friendID, Balance: decimal.Zero}, nil
		}
		s.LogError(ctx, err, "Failed to find friend balance",
			slog.Int64("user_id", userID),
			slog.Int64("friend_id", friendID))
		return nil, fmt.Errorf("failed to find friend balance: %w", err)
	}
	fb := domain.ToFriendBalance(userID, *row)
	return &fb, nil
}

func (s *balanceService) GetGroupBalancesForUser(ctx context.Context, userID int64) ([]domain.GroupBalance, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.balanceRepo.ListGroupBalancesForUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group balances for user", slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list group balances: %w", err)
	}
	return toGroupBalances(rows), nil
}

func (s *balanceService) GetGroupBalances(ctx context.Context, groupID int64) ([]domain.GroupBalance, error) {
	if s.Membership != nil {
		exists, err := s.Membership.GroupExists(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("failed to check group %d: %w", groupID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: group %d", apperrors.ErrNotFound, groupID)
		}
	}
	rows, err := s.balanceRepo.ListBalancesForGroup(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group balances", slog.Int64("group_id", groupID))
		return nil, fmt.Errorf("failed to list group balances: %w", err)
	}
	return toGroupBalances(rows), nil
}

func toGroupBalances(rows []domain.BalanceAggregate) []domain.GroupBalance {
	out := make([]domain.GroupBalance, len(rows))
	for i, a := range rows {
		out[i] = domain.ToGroupBalance(a)
	}
	return out
}
