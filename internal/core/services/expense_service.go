package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// expenseService implements the ExpenseSvcFacade interface
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseReader
	txManager   portsrepo.TransactionManager
	balances    portssvc.BalanceUpdaterSvc
	validate    *validator.Validate
	tolerance   decimal.Decimal
}

// ExpenseServiceOption is a functional option for configuring the expense service
type ExpenseServiceOption func(*expenseService)

// WithExpenseMembership adds the membership reader used to check friendships and groups
func WithExpenseMembership(reader portsrepo.MembershipReader) ExpenseServiceOption {
	return func(s *expenseService) {
		s.Membership = reader
	}
}

// WithExpenseEventRecorder adds the ledger event recorder
func WithExpenseEventRecorder(recorder portssvc.LedgerEventRecorder) ExpenseServiceOption {
	return func(s *expenseService) {
		s.Events = recorder
	}
}

// WithExpenseConflictRetries sets how many times a conflicting transaction is retried
func WithExpenseConflictRetries(n int) ExpenseServiceOption {
	return func(s *expenseService) {
		s.ConflictMaxRetries = n
	}
}

// WithExpenseAmountTolerance sets the allowed gap between total and share sum
func WithExpenseAmountTolerance(tolerance decimal.Decimal) ExpenseServiceOption {
	return func(s *expenseService) {
		s.tolerance = tolerance
	}
}

// WithExpenseClock overrides the time source
func WithExpenseClock(now func() time.Time) ExpenseServiceOption {
	return func(s *expenseService) {
		s.Now = now
	}
}

// NewExpenseService creates a new expense service with the provided options
func NewExpenseService(expenseRepo portsrepo.ExpenseReader, txManager portsrepo.TransactionManager, balances portssvc.BalanceUpdaterSvc, options ...ExpenseServiceOption) portssvc.ExpenseSvcFacade {
	svc := &expenseService{
		expenseRepo: expenseRepo,
		txManager:   txManager,
		balances:    balances,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		tolerance:   domain.DefaultAmountTolerance,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure expenseService implements the ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) validateRequest(ctx context.Context, req any) error {
	err := s.validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, "; "))
}

func (s *expenseService) buildExpense(req dto.CreateExpenseRequest, now time.Time) domain.Expense {
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	return domain.Expense{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Currency:       req.Currency,
		Category:       req.Category,
		PayerID:        req.PayerID,
		TotalAmount:    req.TotalAmount,
		PaidAt:         paidAt,
		Participations: dto.ToParticipations(req.Participants),
	}
}

// checkMembership verifies that every referenced user and group exists, that FRIEND
// participants are friends of the payer and that GROUP participants belong to their group.
func (s *expenseService) checkMembership(ctx context.Context, e domain.Expense) error {
	if s.Membership == nil {
		return nil
	}
	exists, err := s.Membership.UserExists(ctx, e.PayerID)
	if err != nil {
		return fmt.Errorf("failed to check payer %d: %w", e.PayerID, err)
	}
	if !exists {
		return fmt.Errorf("%w: payer %d", apperrors.ErrNotFound, e.PayerID)
	}

	for _, p := range e.Participations {
		if p.UserID != e.PayerID {
			exists, err := s.Membership.UserExists(ctx, p.UserID)
			if err != nil {
				return fmt.Errorf("failed to check participant %d: %w", p.UserID, err)
			}
			if !exists {
				return fmt.Errorf("%w: participant %d", apperrors.ErrNotFound, p.UserID)
			}
		}

		switch p.Provenance {
		case domain.ProvenanceFriend:
			if p.UserID == e.PayerID {
				continue
			}
			friends, err := s.Membership.AreFriends(ctx, e.PayerID, p.UserID)
			if err != nil {
				return fmt.Errorf("failed to check friendship %d-%d: %w", e.PayerID, p.UserID, err)
			}
			if !friends {
				return fmt.Errorf("%w: user %d is not a friend of payer %d", apperrors.ErrInvalidOperation, p.UserID, e.PayerID)
			}
		case domain.ProvenanceGroup:
			groupID, _ := p.GroupID()
			exists, err := s.Membership.GroupExists(ctx, groupID)
			if err != nil {
				return fmt.Errorf("failed to check group %d: %w", groupID, err)
			}
			if !exists {
				return fmt.Errorf("%w: group %d", apperrors.ErrNotFound, groupID)
			}
			member, err := s.Membership.IsGroupMember(ctx, groupID, p.UserID)
			if err != nil {
				return fmt.Errorf("failed to check membership of user %d in group %d: %w", p.UserID, groupID, err)
			}
			if !member {
				return fmt.Errorf("%w: user %d is not a member of group %d", apperrors.ErrInvalidOperation, p.UserID, groupID)
			}
		}
	}
	return nil
}

func (s *expenseService) inTx(ctx context.Context, operation string, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	return s.withConflictRetry(ctx, operation, func() error {
		return s.txManager.WithinTx(ctx, fn)
	})
}

// logFailure logs unexpected errors; expected outcomes such as NotFound are left to the caller.
func (s *expenseService) logFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidOperation) || errors.Is(err, apperrors.ErrForbidden) {
		s.LogDebug(ctx, msg, append(keyvals, slog.String("reason", err.Error()))...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, actorID int64) (*domain.Expense, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	now := s.now()
	expense := s.buildExpense(req, now)
	expense.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
	if err := expense.Validate(s.tolerance); err != nil {
		return nil, err
	}
	if !expense.IsPayerOrParticipant(actorID) {
		return nil, fmt.Errorf("%w: user %d must be the payer or a participant to create this expense", apperrors.ErrInvalidOperation, actorID)
	}
	if err := s.checkMembership(ctx, expense); err != nil {
		s.logFailure(ctx, err, "Expense rejected by membership checks", slog.Int64("payer_id", expense.PayerID))
		return nil, err
	}

	var created domain.Expense
	err := s.inTx(ctx, "create_expense", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		id, err := repos.Expenses.SaveExpense(ctx, expense)
		if err != nil {
			return fmt.Errorf("failed to save expense: %w", err)
		}
		created = expense.Clone()
		created.ExpenseID = id
		for i := range created.Participations {
			created.Participations[i].ExpenseID = id
		}
		return s.balances.ApplyExpenseCreated(ctx, repos.Balances, created)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create expense", slog.Int64("payer_id", expense.PayerID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense created",
		slog.Int64("expense_id", created.ExpenseID),
		slog.Int64("payer_id", created.PayerID),
		slog.String("total_amount", created.TotalAmount.String()))
	s.record(ctx, domain.NewLedgerEvent(domain.EventExpenseCreated,
		domain.WithExpense(created.ExpenseID),
		domain.WithActor(actorID),
		domain.WithData("totalAmount", created.TotalAmount.String()),
		domain.WithData("participants", len(created.Participations))))
	return &created, nil
}

func (s *expenseService) GetExpense(ctx context.Context, expenseID int64, actorID int64) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find expense", slog.Int64("expense_id", expenseID))
		return nil, err
	}
	if !expense.IsPayerOrParticipant(actorID) {
		return nil, fmt.Errorf("%w: user %d cannot view expense %d", apperrors.ErrForbidden, actorID, expenseID)
	}
	return expense, nil
}

func (s *expenseService) ListExpensesForUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListExpensesForUser(ctx, userID, limit)
	if err != nil {
		s.logFailure(ctx, err, "Failed to list expenses for user", slog.Int64("user_id", userID))
		return nil, err
	}
	return expenses, nil
}

func (s *expenseService) ListExpensesForGroup(ctx context.Context, groupID, actorID int64) ([]domain.Expense, error) {
	if err := s.AuthorizeGroupMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListExpensesForGroup(ctx, groupID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to list expenses for group", slog.Int64("group_id", groupID))
		return nil, err
	}
	return expenses, nil
}

func (s *expenseService) ListExpensesBetween(ctx context.Context, userID, friendID int64, limit int) ([]domain.Expense, error) {
	if userID == friendID {
		return nil, fmt.Errorf("%w: a user shares no expenses with themselves", apperrors.ErrValidation)
	}
	if err := s.ensureUserExists(ctx, friendID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListExpensesBetween(ctx, userID, friendID, limit)
	if err != nil {
		s.logFailure(ctx, err, "Failed to list shared expenses",
			slog.Int64("user_id", userID),
			slog.Int64("friend_id", friendID))
		return nil, err
	}
	return expenses, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, expenseID int64, req dto.UpdateExpenseRequest, actorID int64) (*domain.Expense, error) {
	createReq := dto.CreateExpenseRequest(req)
	if err := s.validateRequest(ctx, createReq); err != nil {
		return nil, err
	}

	var old, updated domain.Expense
	err := s.inTx(ctx, "update_expense", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := repos.Expenses.FindExpenseByID(ctx, expenseID)
		if err != nil {
			return err
		}
		old = *current
		if !old.IsPayerOrParticipant(actorID) {
			return fmt.Errorf("%w: only the payer or a participant can update expense %d", apperrors.ErrInvalidOperation, expenseID)
		}

		now := s.now()
		updated = s.buildExpense(createReq, now)
		updated.ExpenseID = expenseID
		updated.AuditFields = domain.AuditFields{
			CreatedAt:     old.CreatedAt,
			CreatedBy:     old.CreatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		}
		for i := range updated.Participations {
			p := &updated.Participations[i]
			p.ExpenseID = expenseID
			// a settlement survives an edit only if it still settles the same debt
			if prev, ok := old.Participant(p.UserID); ok && prev.Paid &&
				old.PayerID == updated.PayerID && prev.OwedAmount.Equal(p.OwedAmount) {
				p.Paid = true
				p.PaidAt = prev.PaidAt
			}
		}
		if err := updated.Validate(s.tolerance); err != nil {
			return err
		}
		if err := s.checkMembership(ctx, updated); err != nil {
			return err
		}

		if err := repos.Expenses.ReplaceExpense(ctx, updated); err != nil {
			return fmt.Errorf("failed to replace expense: %w", err)
		}
		return s.balances.ApplyExpenseUpdated(ctx, repos.Balances, old, updated)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update expense", slog.Int64("expense_id", expenseID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense updated", slog.Int64("expense_id", expenseID))
	s.record(ctx, domain.NewLedgerEvent(domain.EventExpenseUpdated,
		domain.WithExpense(expenseID),
		domain.WithActor(actorID),
		domain.WithData("oldTotalAmount", old.TotalAmount.String()),
		domain.WithData("totalAmount", updated.TotalAmount.String())))
	return &updated, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, expenseID int64, actorID int64) error {
	var deleted domain.Expense
	err := s.inTx(ctx, "delete_expense", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := repos.Expenses.FindExpenseByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if current.PayerID != actorID {
			return fmt.Errorf("%w: only the payer can delete expense %d", apperrors.ErrInvalidOperation, expenseID)
		}
		deleted = *current
		if err := repos.Expenses.DeleteExpense(ctx, expenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return s.balances.ApplyExpenseDeleted(ctx, repos.Balances, deleted)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete expense", slog.Int64("expense_id", expenseID))
		return err
	}

	s.LogInfo(ctx, "Expense deleted", slog.Int64("expense_id", expenseID))
	s.record(ctx, domain.NewLedgerEvent(domain.EventExpenseDeleted,
		domain.WithExpense(expenseID),
		domain.WithActor(actorID),
		domain.WithData("totalAmount", deleted.TotalAmount.String())))
	return nil
}

func (s *expenseService) SetPaymentStatus(ctx context.Context, expenseID, participantUserID int64, paid bool, actorID int64) (*domain.Expense, error) {
	var result domain.Expense
	var changed bool
	err := s.inTx(ctx, "set_payment_status", func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := repos.Expenses.FindExpenseByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if current.PayerID != actorID {
			return fmt.Errorf("%w: only the payer can change payment status on expense %d", apperrors.ErrInvalidOperation, expenseID)
		}
		p, ok := current.Participant(participantUserID)
		if !ok {
			return fmt.Errorf("%w: user %d does not participate in expense %d", apperrors.ErrNotFound, participantUserID, expenseID)
		}

		result = current.Clone()
		changed = p.Paid != paid
		if !changed {
			return nil
		}

		if err := s.balances.ApplyPaymentStatusChanged(ctx, repos.Balances, *current, participantUserID, paid); err != nil {
			return err
		}
		var paidAt *time.Time
		if paid {
			now := s.now()
			paidAt = &now
		}
		if err := repos.Expenses.UpdateParticipationPayment(ctx, expenseID, participantUserID, paid, paidAt); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
		for i := range result.Participations {
			if result.Participations[i].UserID == participantUserID {
				result.Participations[i].Paid = paid
				result.Participations[i].PaidAt = paidAt
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to set payment status",
			slog.Int64("expense_id", expenseID),
			slog.Int64("participant_id", participantUserID))
		return nil, err
	}

	if changed {
		s.LogInfo(ctx, "Payment status changed",
			slog.Int64("expense_id", expenseID),
			slog.Int64("participant_id", participantUserID),
			slog.Bool("paid", paid))
		s.record(ctx, domain.NewLedgerEvent(domain.EventPaymentStatusChanged,
			domain.WithExpense(expenseID),
			domain.WithActor(actorID),
			domain.WithData("participantID", participantUserID),
			domain.WithData("paid", paid)))
	}
	return &result, nil
}
