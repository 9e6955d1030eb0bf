// Package memory provides an in-process implementation of the repository ports,
// used by tests and by STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATE - the data a transaction works on
// =============================================================================

type state struct {
	balances      map[domain.BalanceKey]domain.BalanceAggregate
	expenses      map[int64]domain.Expense
	nextExpenseID int64
}

func newState() *state {
	return &state{
		balances: make(map[domain.BalanceKey]domain.BalanceAggregate),
		expenses: make(map[int64]domain.Expense),
	}
}

func (st *state) clone() *state {
	out := &state{
		balances:      make(map[domain.BalanceKey]domain.BalanceAggregate, len(st.balances)),
		expenses:      make(map[int64]domain.Expense, len(st.expenses)),
		nextExpenseID: st.nextExpenseID,
	}
	for k, v := range st.balances {
		out.balances[k] = v
	}
	for k, v := range st.expenses {
		out.expenses[k] = v.Clone()
	}
	return out
}

// =============================================================================
// STORE
// =============================================================================

// Store keeps everything in memory. Writers are serialized; each write transaction
// works on a private copy that replaces the committed state only on success, so
// readers never observe a partial update.
type Store struct {
	writeMu   sync.Mutex // held for the whole of a write transaction
	mu        sync.RWMutex
	committed *state

	graphMu     sync.RWMutex
	users       map[int64]bool
	groups      map[int64]map[int64]bool
	friendships map[domain.BalanceKey]bool

	eventMu sync.Mutex
	events  []domain.LedgerEvent
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		committed:   newState(),
		users:       make(map[int64]bool),
		groups:      make(map[int64]map[int64]bool),
		friendships: make(map[domain.BalanceKey]bool),
	}
}

// NewRepositoryProvider exposes a Store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BalanceRepo:    s,
		ExpenseRepo:    s,
		MembershipRepo: s,
		EventRepo:      s,
		TxManager:      s,
	}
}

var (
	_ portsrepo.BalanceRepositoryFacade = (*Store)(nil)
	_ portsrepo.ExpenseRepositoryFacade = (*Store)(nil)
	_ portsrepo.MembershipReader        = (*Store)(nil)
	_ portsrepo.LedgerEventWriter       = (*Store)(nil)
	_ portsrepo.TransactionManager      = (*Store)(nil)
)

// WithinTx runs fn against a private copy of the state and publishes it on success.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	v := &view{st: work}
	if err := fn(ctx, portsrepo.TxRepositories{Balances: v, Expenses: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read() *view {
	return &view{st: s.committed}
}

// --- BalanceReader ---

func (s *Store) FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindBalance(ctx, key)
}

func (s *Store) ListFriendBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListFriendBalancesForUser(ctx, userID)
}

func (s *Store) ListGroupBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListGroupBalancesForUser(ctx, userID)
}

func (s *Store) ListBalancesForGroup(ctx context.Context, groupID int64) ([]domain.BalanceAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListBalancesForGroup(ctx, groupID)
}

// --- BalanceWriter (each call is its own transaction) ---

func (s *Store) UpsertBalance(ctx context.Context, key domain.BalanceKey, expenseID int64, now time.Time, fn domain.BalanceFunc) (*domain.BalanceAggregate, error) {
	var out *domain.BalanceAggregate
	err := s.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		var err error
		out, err = repos.Balances.UpsertBalance(ctx, key, expenseID, now, fn)
		return err
	})
	return out, err
}

func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		var err error
		n, err = repos.Balances.ClearAll(ctx)
		return err
	})
	return n, err
}

// --- ExpenseReader ---

func (s *Store) FindExpenseByID(ctx context.Context, expenseID int64) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindExpenseByID(ctx, expenseID)
}

func (s *Store) ListAllExpenses(ctx context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListAllExpenses(ctx)
}

func (s *Store) ListExpensesForUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListExpensesForUser(ctx, userID, limit)
}

func (s *Store) ListExpensesForGroup(ctx context.Context, groupID int64) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListExpensesForGroup(ctx, groupID)
}

func (s *Store) ListExpensesBetween(ctx context.Context, userID, otherUserID int64, limit int) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListExpensesBetween(ctx, userID, otherUserID, limit)
}

// --- ExpenseWriter ---

func (s *Store) SaveExpense(ctx context.Context, expense domain.Expense) (int64, error) {
	var id int64
	err := s.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		var err error
		id, err = repos.Expenses.SaveExpense(ctx, expense)
		return err
	})
	return id, err
}

func (s *Store) ReplaceExpense(ctx context.Context, expense domain.Expense) error {
	return s.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return repos.Expenses.ReplaceExpense(ctx, expense)
	})
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID int64) error {
	return s.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return repos.Expenses.DeleteExpense(ctx, expenseID)
	})
}

func (s *Store) UpdateParticipationPayment(ctx context.Context, expenseID, userID int64, paid bool, paidAt *time.Time) error {
	return s.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return repos.Expenses.UpdateParticipationPayment(ctx, expenseID, userID, paid, paidAt)
	})
}

// =============================================================================
// VIEW - unsynchronized operations on one state; callers hold the locks
// =============================================================================

type view struct {
	st *state
}

func (v *view) FindBalance(_ context.Context, key domain.BalanceKey) (*domain.BalanceAggregate, error) {
	agg, ok := v.st.balances[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &agg, nil
}

func (v *view) ListFriendBalancesForUser(_ context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	return v.filter(func(k domain.BalanceKey) bool {
		return k.Type == domain.FriendToFriend && (k.FirstID == userID || k.SecondID == userID)
	}), nil
}

func (v *view) ListGroupBalancesForUser(_ context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	return v.filter(func(k domain.BalanceKey) bool {
		return k.Type == domain.UserToGroup && k.FirstID == userID
	}), nil
}

func (v *view) ListBalancesForGroup(_ context.Context, groupID int64) ([]domain.BalanceAggregate, error) {
	return v.filter(func(k domain.BalanceKey) bool {
		return k.Type == domain.UserToGroup && k.SecondID == groupID
	}), nil
}

func (v *view) filter(match func(domain.BalanceKey) bool) []domain.BalanceAggregate {
	out := []domain.BalanceAggregate{}
	for k, agg := range v.st.balances {
		if match(k) {
			out = append(out, agg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Less(out[j].Key)
	})
	return out
}

func (v *view) UpsertBalance(_ context.Context, key domain.BalanceKey, expenseID int64, now time.Time, fn domain.BalanceFunc) (*domain.BalanceAggregate, error) {
	agg, ok := v.st.balances[key]
	if !ok {
		agg = domain.BalanceAggregate{Key: key, Balance: decimal.Zero}
	}
	agg.Balance = fn(agg.Balance)
	agg.LastExpenseID = expenseID
	agg.Version++
	agg.LastUpdatedAt = now
	v.st.balances[key] = agg
	return &agg, nil
}

func (v *view) ClearAll(_ context.Context) (int64, error) {
	n := int64(len(v.st.balances))
	v.st.balances = make(map[domain.BalanceKey]domain.BalanceAggregate)
	return n, nil
}

func (v *view) FindExpenseByID(_ context.Context, expenseID int64) (*domain.Expense, error) {
	e, ok := v.st.expenses[expenseID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := e.Clone()
	return &out, nil
}

func (v *view) ListAllExpenses(_ context.Context) ([]domain.Expense, error) {
	out := make([]domain.Expense, 0, len(v.st.expenses))
	for _, e := range v.st.expenses {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpenseID < out[j].ExpenseID
	})
	return out, nil
}

func (v *view) ListExpensesForUser(_ context.Context, userID int64, limit int) ([]domain.Expense, error) {
	return v.newestExpenses(limit, func(e domain.Expense) bool {
		return e.IsPayerOrParticipant(userID)
	}), nil
}

func (v *view) ListExpensesForGroup(_ context.Context, groupID int64) ([]domain.Expense, error) {
	return v.newestExpenses(0, func(e domain.Expense) bool {
		return e.HasGroupShare(groupID)
	}), nil
}

func (v *view) ListExpensesBetween(_ context.Context, userID, otherUserID int64, limit int) ([]domain.Expense, error) {
	return v.newestExpenses(limit, func(e domain.Expense) bool {
		return e.IsPayerOrParticipant(userID) && e.IsPayerOrParticipant(otherUserID)
	}), nil
}

func (v *view) newestExpenses(limit int, match func(domain.Expense) bool) []domain.Expense {
	out := []domain.Expense{}
	for _, e := range v.st.expenses {
		if match(e) {
			out = append(out, e.Clone())
		}
	}
	domain.NewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (v *view) SaveExpense(_ context.Context, expense domain.Expense) (int64, error) {
	v.st.nextExpenseID++
	e := expense.Clone()
	e.ExpenseID = v.st.nextExpenseID
	for i := range e.Participations {
		e.Participations[i].ExpenseID = e.ExpenseID
	}
	v.st.expenses[e.ExpenseID] = e
	return e.ExpenseID, nil
}

func (v *view) ReplaceExpense(_ context.Context, expense domain.Expense) error {
	if _, ok := v.st.expenses[expense.ExpenseID]; !ok {
		return apperrors.ErrNotFound
	}
	e := expense.Clone()
	for i := range e.Participations {
		e.Participations[i].ExpenseID = e.ExpenseID
	}
	v.st.expenses[e.ExpenseID] = e
	return nil
}

func (v *view) DeleteExpense(_ context.Context, expenseID int64) error {
	if _, ok := v.st.expenses[expenseID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(v.st.expenses, expenseID)
	return nil
}

func (v *view) UpdateParticipationPayment(_ context.Context, expenseID, userID int64, paid bool, paidAt *time.Time) error {
	e, ok := v.st.expenses[expenseID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range e.Participations {
		if e.Participations[i].UserID == userID {
			e.Participations[i].Paid = paid
			e.Participations[i].PaidAt = paidAt
			v.st.expenses[expenseID] = e
			return nil
		}
	}
	return fmt.Errorf("%w: participant %d in expense %d", apperrors.ErrNotFound, userID, expenseID)
}
