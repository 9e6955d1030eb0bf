package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/core/services"
	"github.com/SscSPs/splitledger/internal/dto"
	"github.com/SscSPs/splitledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
	dave  int64 = 4

	flatGroup int64 = 10
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func friendReq(userID int64, amount string) dto.ParticipantRequest {
	return dto.ParticipantRequest{UserID: userID, OwedAmount: dec(amount), Source: domain.ProvenanceFriend}
}

func groupReq(userID, groupID int64, amount string) dto.ParticipantRequest {
	return dto.ParticipantRequest{UserID: userID, OwedAmount: dec(amount), Source: domain.ProvenanceGroup, GroupID: int64Ptr(groupID)}
}

func expenseReq(payer int64, total string, ps ...dto.ParticipantRequest) dto.CreateExpenseRequest {
	return dto.CreateExpenseRequest{
		Title:        "Dinner",
		Currency:     "EUR",
		PayerID:      payer,
		TotalAmount:  dec(total),
		Participants: ps,
	}
}

// --- recorder fake ---

type eventCollector struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
}

func (c *eventCollector) Record(_ context.Context, event domain.LedgerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *eventCollector) types() []domain.LedgerEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.LedgerEventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

// =============================================================================
// SUITE - engine properties against the in-memory store
// =============================================================================

type BalanceServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	events   *eventCollector
	balances portssvc.BalanceSvcFacade
	expenses portssvc.ExpenseSvcFacade
}

func (s *BalanceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newSocialGraph()
	s.events = &eventCollector{}
	s.balances, s.expenses = newServices(s.store, s.events)
}

// newSocialGraph: alice, bob, carol and dave are all friends; alice, bob and carol share flatGroup.
func newSocialGraph() *memory.Store {
	store := memory.NewStore()
	users := []int64{alice, bob, carol, dave}
	for i, u := range users {
		for _, v := range users[i+1:] {
			store.AddFriendship(u, v)
		}
	}
	store.AddGroupMember(flatGroup, alice, bob, carol)
	return store
}

func newServices(store *memory.Store, recorder portssvc.LedgerEventRecorder) (portssvc.BalanceSvcFacade, portssvc.ExpenseSvcFacade) {
	balanceOpts := []services.BalanceServiceOption{services.WithBalanceMembership(store)}
	expenseOpts := []services.ExpenseServiceOption{services.WithExpenseMembership(store)}
	if recorder != nil {
		balanceOpts = append(balanceOpts, services.WithBalanceEventRecorder(recorder))
		expenseOpts = append(expenseOpts, services.WithExpenseEventRecorder(recorder))
	}
	balances := services.NewBalanceService(store, store, balanceOpts...)
	expenses := services.NewExpenseService(store, store, balances, expenseOpts...)
	return balances, expenses
}

func (s *BalanceServiceTestSuite) friendBalance(user, friend int64) string {
	fb, err := s.balances.GetFriendBalance(s.ctx, user, friend)
	s.Require().NoError(err)
	return fb.Balance.String()
}

func (s *BalanceServiceTestSuite) groupBalances() map[int64]string {
	rows, err := s.balances.GetGroupBalances(s.ctx, flatGroup)
	s.Require().NoError(err)
	out := make(map[int64]string, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.Balance.String()
	}
	return out
}

// snapshot captures every aggregate balance for comparison, ignoring stamps.
func snapshot(t *testing.T, store *memory.Store, users ...int64) map[domain.BalanceKey]string {
	t.Helper()
	ctx := context.Background()
	out := make(map[domain.BalanceKey]string)
	for _, u := range users {
		friends, err := store.ListFriendBalancesForUser(ctx, u)
		require.NoError(t, err)
		groups, err := store.ListGroupBalancesForUser(ctx, u)
		require.NoError(t, err)
		for _, a := range append(friends, groups...) {
			if !a.Balance.IsZero() {
				out[a.Key] = a.Balance.String()
			}
		}
	}
	return out
}

func (s *BalanceServiceTestSuite) TestPureFriendScenario() {
	_, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "120",
		friendReq(alice, "40"), friendReq(bob, "40"), friendReq(carol, "40")), alice)
	s.Require().NoError(err)

	s.Equal("40", s.friendBalance(alice, bob))
	s.Equal("-40", s.friendBalance(bob, alice))
	s.Equal("40", s.friendBalance(alice, carol))
	s.Equal("0", s.friendBalance(bob, carol))

	summary, err := s.balances.GetUserBalanceSummary(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal("80", summary.TotalOwed.String())
	s.Equal("0", summary.TotalOwes.String())

	// bob pays carol back for something unrelated
	_, err = s.expenses.CreateExpense(s.ctx, expenseReq(bob, "25", friendReq(carol, "25")), bob)
	s.Require().NoError(err)

	s.Equal("25", s.friendBalance(bob, carol))
	bobSummary, err := s.balances.GetUserBalanceSummary(s.ctx, bob)
	s.Require().NoError(err)
	s.Equal("-15", bobSummary.NetBalance.String())
	s.Equal("15", bobSummary.TotalOwes.String())
}

func (s *BalanceServiceTestSuite) TestMixedFriendAndGroupScenario() {
	_, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "90",
		groupReq(alice, flatGroup, "30"), friendReq(bob, "30"), groupReq(carol, flatGroup, "30")), alice)
	s.Require().NoError(err)

	s.Equal("30", s.friendBalance(alice, bob))
	s.Equal("30", s.friendBalance(alice, carol))
	s.Equal(map[int64]string{alice: "30", carol: "-30"}, s.groupBalances())

	groupRows, err := s.balances.GetGroupBalancesForUser(s.ctx, carol)
	s.Require().NoError(err)
	s.Require().Len(groupRows, 1)
	s.Equal(flatGroup, groupRows[0].GroupID)
	s.Equal("-30", groupRows[0].Balance.String())
}

func (s *BalanceServiceTestSuite) TestGroupTotalConservation() {
	_, err := s.expenses.CreateExpense(s.ctx, expenseReq(bob, "100",
		groupReq(alice, flatGroup, "33.33"), groupReq(bob, flatGroup, "33.33"), groupReq(carol, flatGroup, "33.34")), bob)
	s.Require().NoError(err)
	_, err = s.expenses.CreateExpense(s.ctx, expenseReq(carol, "60",
		groupReq(alice, flatGroup, "20"), groupReq(bob, flatGroup, "20"), groupReq(carol, flatGroup, "20")), carol)
	s.Require().NoError(err)

	rows, err := s.balances.GetGroupBalances(s.ctx, flatGroup)
	s.Require().NoError(err)
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Balance)
	}
	s.True(sum.IsZero(), "group balances sum to %s", sum)
}

func (s *BalanceServiceTestSuite) TestUpdateReplacesContribution() {
	created, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "60", friendReq(bob, "30"), friendReq(carol, "30")), alice)
	s.Require().NoError(err)

	_, err = s.expenses.UpdateExpense(s.ctx, created.ExpenseID,
		dto.UpdateExpenseRequest(expenseReq(alice, "50", friendReq(bob, "10"), friendReq(dave, "40"))), bob)
	s.Require().NoError(err)

	s.Equal("10", s.friendBalance(alice, bob))
	s.Equal("0", s.friendBalance(alice, carol))
	s.Equal("40", s.friendBalance(alice, dave))

	stored, err := s.expenses.GetExpense(s.ctx, created.ExpenseID, alice)
	s.Require().NoError(err)
	s.Equal("50", stored.TotalAmount.String())
	s.Len(stored.Participations, 2)
	s.Equal(alice, stored.CreatedBy)
	s.Equal(bob, stored.LastUpdatedBy)
}

func (s *BalanceServiceTestSuite) TestDeleteCancelsContribution() {
	created, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "90",
		groupReq(alice, flatGroup, "30"), groupReq(bob, flatGroup, "30"), groupReq(carol, flatGroup, "30")), alice)
	s.Require().NoError(err)

	s.Require().NoError(s.expenses.DeleteExpense(s.ctx, created.ExpenseID, alice))

	s.Empty(snapshot(s.T(), s.store, alice, bob, carol))
	_, err = s.expenses.GetExpense(s.ctx, created.ExpenseID, alice)
	s.ErrorIs(err, apperrors.ErrNotFound)

	// the rows still exist, stamped with the deleted expense
	row, err := s.store.FindBalance(s.ctx, domain.FriendKey(alice, bob))
	s.Require().NoError(err)
	s.Equal(created.ExpenseID, row.LastExpenseID)
}

func (s *BalanceServiceTestSuite) TestPaymentToggleIsIdempotent() {
	created, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "90",
		groupReq(alice, flatGroup, "30"), friendReq(bob, "30"), groupReq(carol, flatGroup, "30")), alice)
	s.Require().NoError(err)

	updated, err := s.expenses.SetPaymentStatus(s.ctx, created.ExpenseID, carol, true, alice)
	s.Require().NoError(err)
	p, _ := updated.Participant(carol)
	s.True(p.Paid)
	s.NotNil(p.PaidAt)

	afterFirst := snapshot(s.T(), s.store, alice, bob, carol)
	s.Equal("0", s.friendBalance(alice, carol))
	s.Equal(map[int64]string{alice: "30", carol: "0"}, s.groupBalances(), "payer's group row is untouched")

	_, err = s.expenses.SetPaymentStatus(s.ctx, created.ExpenseID, carol, true, alice)
	s.Require().NoError(err)
	s.Equal(afterFirst, snapshot(s.T(), s.store, alice, bob, carol))

	_, err = s.expenses.SetPaymentStatus(s.ctx, created.ExpenseID, carol, false, alice)
	s.Require().NoError(err)
	s.Equal("30", s.friendBalance(alice, carol))
	s.Equal(map[int64]string{alice: "30", carol: "-30"}, s.groupBalances())
}

func (s *BalanceServiceTestSuite) TestRecalculateMatchesIncrementalState() {
	e1, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "90",
		groupReq(alice, flatGroup, "30"), friendReq(bob, "30"), groupReq(carol, flatGroup, "30")), alice)
	s.Require().NoError(err)
	e2, err := s.expenses.CreateExpense(s.ctx, expenseReq(dave, "40", friendReq(alice, "15"), friendReq(bob, "25")), dave)
	s.Require().NoError(err)
	_, err = s.expenses.CreateExpense(s.ctx, expenseReq(carol, "12.50", friendReq(bob, "12.50")), carol)
	s.Require().NoError(err)
	_, err = s.expenses.SetPaymentStatus(s.ctx, e1.ExpenseID, carol, true, alice)
	s.Require().NoError(err)
	_, err = s.expenses.UpdateExpense(s.ctx, e2.ExpenseID,
		dto.UpdateExpenseRequest(expenseReq(dave, "45", friendReq(alice, "20"), friendReq(bob, "25"))), dave)
	s.Require().NoError(err)

	incremental := snapshot(s.T(), s.store, alice, bob, carol, dave)

	replayed, err := s.balances.RecalculateAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, replayed)
	s.Equal(incremental, snapshot(s.T(), s.store, alice, bob, carol, dave))

	// re-running is safe
	replayed, err = s.balances.RecalculateAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, replayed)
	s.Equal(incremental, snapshot(s.T(), s.store, alice, bob, carol, dave))

	s.Contains(s.events.types(), domain.EventBalancesRecalculated)
}

func (s *BalanceServiceTestSuite) TestSummaryConsistency() {
	_, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "90",
		groupReq(alice, flatGroup, "30"), groupReq(bob, flatGroup, "30"), groupReq(carol, flatGroup, "30")), alice)
	s.Require().NoError(err)
	_, err = s.expenses.CreateExpense(s.ctx, expenseReq(bob, "200", friendReq(alice, "150"), friendReq(dave, "50")), bob)
	s.Require().NoError(err)

	for _, u := range []int64{alice, bob, carol, dave} {
		summary, err := s.balances.GetUserBalanceSummary(s.ctx, u)
		s.Require().NoError(err)

		friends, err := s.balances.GetFriendBalances(s.ctx, u)
		s.Require().NoError(err)
		groups, err := s.balances.GetGroupBalancesForUser(s.ctx, u)
		s.Require().NoError(err)

		sum := decimal.Zero
		for _, f := range friends {
			sum = sum.Add(f.Balance)
		}
		for _, g := range groups {
			sum = sum.Add(g.Balance)
		}

		s.True(summary.TotalOwed.Sub(summary.TotalOwes).Equal(summary.NetBalance), "user %d", u)
		s.True(sum.Equal(summary.NetBalance), "user %d: %s != %s", u, sum, summary.NetBalance)
		s.False(summary.TotalOwed.IsNegative())
		s.False(summary.TotalOwes.IsNegative())
	}
}

func (s *BalanceServiceTestSuite) TestConcurrentCreatesOnSameRow() {
	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.expenses.CreateExpense(s.ctx, expenseReq(alice, "10", friendReq(bob, "10")), alice)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal("250", s.friendBalance(alice, bob))
	row, err := s.store.FindBalance(s.ctx, domain.FriendKey(alice, bob))
	s.Require().NoError(err)
	s.Equal(int64(n), row.Version)
}

func (s *BalanceServiceTestSuite) TestLifecycleEventsWithoutExpenseService() {
	e := domain.Expense{
		ExpenseID:   99,
		PayerID:     bob,
		TotalAmount: dec("40"),
		Participations: []domain.Participation{
			{UserID: alice, OwedAmount: dec("40"), Provenance: domain.ProvenanceFriend, Active: true},
		},
	}

	s.Require().NoError(s.balances.OnExpenseCreated(s.ctx, e))
	s.Equal("-40", s.friendBalance(alice, bob))

	updated := e.Clone()
	updated.TotalAmount = dec("30")
	updated.Participations[0].OwedAmount = dec("30")
	s.Require().NoError(s.balances.OnExpenseUpdated(s.ctx, e, updated))
	s.Equal("-30", s.friendBalance(alice, bob))

	s.Require().NoError(s.balances.OnPaymentStatusChanged(s.ctx, updated, alice, true))
	s.Equal("0", s.friendBalance(alice, bob))

	settled := updated.Clone()
	settled.Participations[0].Paid = true
	s.Require().NoError(s.balances.OnExpenseDeleted(s.ctx, settled))
	s.Equal("0", s.friendBalance(alice, bob))

	s.Equal([]domain.LedgerEventType{
		domain.EventExpenseCreated,
		domain.EventExpenseUpdated,
		domain.EventPaymentStatusChanged,
		domain.EventExpenseDeleted,
	}, s.events.types())
}

func (s *BalanceServiceTestSuite) TestLifecycleRejectsInvalidExpense() {
	e := domain.Expense{
		ExpenseID:   7,
		PayerID:     alice,
		TotalAmount: dec("100"),
		Participations: []domain.Participation{
			{UserID: bob, OwedAmount: dec("50"), Provenance: domain.ProvenanceFriend, Active: true},
		},
	}
	err := s.balances.OnExpenseCreated(s.ctx, e)
	s.ErrorIs(err, apperrors.ErrInvalidOperation)
	s.Empty(snapshot(s.T(), s.store, alice, bob))

	err = s.balances.OnPaymentStatusChanged(s.ctx, e, dave, true)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BalanceServiceTestSuite) TestQueryErrors() {
	_, err := s.balances.GetUserBalanceSummary(s.ctx, 404)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.balances.GetGroupBalances(s.ctx, 404)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.balances.GetFriendBalance(s.ctx, alice, alice)
	s.ErrorIs(err, apperrors.ErrValidation)

	s.ErrorIs(s.balances.AuthorizeGroupMember(s.ctx, flatGroup, dave), apperrors.ErrForbidden)
	s.NoError(s.balances.AuthorizeGroupMember(s.ctx, flatGroup, carol))
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}

// =============================================================================
// Order independence across stores
// =============================================================================

func TestRecalculateAll_OrderIndependent(t *testing.T) {
	ctx := context.Background()
	reqs := []dto.CreateExpenseRequest{
		expenseReq(alice, "90", groupReq(alice, flatGroup, "30"), groupReq(bob, flatGroup, "30"), groupReq(carol, flatGroup, "30")),
		expenseReq(bob, "40", friendReq(alice, "15"), friendReq(dave, "25")),
		expenseReq(dave, "9.99", friendReq(carol, "9.99")),
		expenseReq(carol, "60", groupReq(alice, flatGroup, "20"), friendReq(dave, "40")),
	}

	run := func(order []int) map[domain.BalanceKey]string {
		store := newSocialGraph()
		balances, expenses := newServices(store, nil)
		for _, i := range order {
			_, err := expenses.CreateExpense(ctx, reqs[i], reqs[i].PayerID)
			require.NoError(t, err)
		}
		_, err := balances.RecalculateAll(ctx)
		require.NoError(t, err)
		return snapshot(t, store, alice, bob, carol, dave)
	}

	forward := run([]int{0, 1, 2, 3})
	backward := run([]int{3, 2, 1, 0})
	shuffled := run([]int{2, 0, 3, 1})

	assert.NotEmpty(t, forward)
	assert.Equal(t, forward, backward)
	assert.Equal(t, forward, shuffled)
}

// =============================================================================
// Conflict retry with a mocked transaction manager
// =============================================================================

type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func validExpense() domain.Expense {
	return domain.Expense{
		ExpenseID:   1,
		PayerID:     alice,
		TotalAmount: dec("10"),
		Participations: []domain.Participation{
			{UserID: bob, OwedAmount: dec("10"), Provenance: domain.ProvenanceFriend, Active: true},
		},
	}
}

func TestBalanceService_RetriesConflicts(t *testing.T) {
	tx := new(MockTxManager)
	conflict := fmt.Errorf("%w: lock timeout", apperrors.ErrConflict)
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(conflict).Twice()
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil).Once()

	svc := services.NewBalanceService(memory.NewStore(), tx, services.WithBalanceConflictRetries(3))

	require.NoError(t, svc.OnExpenseCreated(context.Background(), validExpense()))
	tx.AssertNumberOfCalls(t, "WithinTx", 3)
}

func TestBalanceService_GivesUpAfterMaxRetries(t *testing.T) {
	tx := new(MockTxManager)
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: deadlock", apperrors.ErrConflict))

	svc := services.NewBalanceService(memory.NewStore(), tx, services.WithBalanceConflictRetries(2))

	err := svc.OnExpenseDeleted(context.Background(), validExpense())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	tx.AssertNumberOfCalls(t, "WithinTx", 3)
}

func TestBalanceService_DoesNotRetryOtherErrors(t *testing.T) {
	tx := new(MockTxManager)
	boom := errors.New("connection reset")
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(boom)

	svc := services.NewBalanceService(memory.NewStore(), tx, services.WithBalanceConflictRetries(5))

	_, err := svc.RecalculateAll(context.Background())
	assert.ErrorIs(t, err, boom)
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
}
