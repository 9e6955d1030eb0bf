package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/SscSPs/splitledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func add(amount string) domain.BalanceFunc {
	return domain.AddDelta(decimal.RequireFromString(amount))
}

func TestStore_UpsertCreatesAndAccumulates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	key := domain.FriendKey(2, 1)

	_, err := store.FindBalance(ctx, key)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	agg, err := store.UpsertBalance(ctx, key, 7, now, add("40"))
	require.NoError(t, err)
	assert.Equal(t, "40", agg.Balance.String())
	assert.Equal(t, int64(1), agg.Version)

	agg, err = store.UpsertBalance(ctx, key, 8, now.Add(time.Minute), add("-15.5"))
	require.NoError(t, err)
	assert.Equal(t, "24.5", agg.Balance.String())
	assert.Equal(t, int64(8), agg.LastExpenseID)
	assert.Equal(t, int64(2), agg.Version)
	assert.Equal(t, domain.FriendKey(1, 2), agg.Key)
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	key := domain.GroupKey(1, 10)
	_, err := store.UpsertBalance(ctx, key, 1, now, add("10"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		if _, err := repos.Balances.UpsertBalance(ctx, key, 2, now, add("5")); err != nil {
			return err
		}
		if _, err := repos.Expenses.SaveExpense(ctx, domain.Expense{PayerID: 1}); err != nil {
			return err
		}
		// the transaction sees its own write, others do not
		inTx, err := repos.Balances.FindBalance(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "15", inTx.Balance.String())
		outside, err := store.FindBalance(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "10", outside.Balance.String())
		return boom
	})
	require.ErrorIs(t, err, boom)

	agg, err := store.FindBalance(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "10", agg.Balance.String())
	all, err := store.ListAllExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_ListsAndClear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, k := range []domain.BalanceKey{
		domain.FriendKey(1, 2), domain.FriendKey(3, 1), domain.FriendKey(2, 3),
		domain.GroupKey(1, 10), domain.GroupKey(2, 10), domain.GroupKey(1, 11),
	} {
		_, err := store.UpsertBalance(ctx, k, 1, now, add("1"))
		require.NoError(t, err)
	}

	friends, err := store.ListFriendBalancesForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, domain.FriendKey(1, 2), friends[0].Key)
	assert.Equal(t, domain.FriendKey(1, 3), friends[1].Key)

	groups, err := store.ListGroupBalancesForUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	members, err := store.ListBalancesForGroup(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	n, err := store.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	friends, err = store.ListFriendBalancesForUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestStore_ExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	groupID := int64(10)

	id, err := store.SaveExpense(ctx, domain.Expense{
		PayerID:     1,
		TotalAmount: decimal.RequireFromString("20"),
		Participations: []domain.Participation{
			{UserID: 1, OwedAmount: decimal.RequireFromString("10"), Provenance: domain.ProvenanceGroup, ProvenanceID: &groupID, Active: true},
			{UserID: 2, OwedAmount: decimal.RequireFromString("10"), Provenance: domain.ProvenanceFriend, Active: true},
		},
	})
	require.NoError(t, err)

	e, err := store.FindExpenseByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, e.Participations[1].ExpenseID)

	// returned copies are detached from the store
	*e.Participations[0].ProvenanceID = 99
	again, err := store.FindExpenseByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), *again.Participations[0].ProvenanceID)

	require.NoError(t, store.UpdateParticipationPayment(ctx, id, 2, true, &now))
	again, err = store.FindExpenseByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.Participations[1].Paid)

	assert.ErrorIs(t, store.UpdateParticipationPayment(ctx, id, 3, true, &now), apperrors.ErrNotFound)

	again.TotalAmount = decimal.RequireFromString("30")
	require.NoError(t, store.ReplaceExpense(ctx, *again))
	again, err = store.FindExpenseByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "30", again.TotalAmount.String())

	require.NoError(t, store.DeleteExpense(ctx, id))
	_, err = store.FindExpenseByID(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, store.DeleteExpense(ctx, id), apperrors.ErrNotFound)
	assert.ErrorIs(t, store.ReplaceExpense(ctx, *again), apperrors.ErrNotFound)
}

func TestStore_ExpenseListings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	groupID := int64(10)
	share := func(userID int64, groupID *int64) domain.Participation {
		p := domain.Participation{UserID: userID, OwedAmount: decimal.RequireFromString("5"), Provenance: domain.ProvenanceFriend, Active: true}
		if groupID != nil {
			p.Provenance, p.ProvenanceID = domain.ProvenanceGroup, groupID
		}
		return p
	}
	save := func(payer int64, createdAt time.Time, ps ...domain.Participation) int64 {
		id, err := store.SaveExpense(ctx, domain.Expense{
			PayerID:        payer,
			TotalAmount:    decimal.RequireFromString("5").Mul(decimal.NewFromInt(int64(len(ps)))),
			Participations: ps,
			AuditFields:    domain.AuditFields{CreatedAt: createdAt},
		})
		require.NoError(t, err)
		return id
	}
	ids := func(es []domain.Expense) []int64 {
		out := make([]int64, len(es))
		for i, e := range es {
			out[i] = e.ExpenseID
		}
		return out
	}

	first := save(1, now, share(2, nil))
	second := save(2, now.Add(time.Hour), share(1, &groupID), share(3, &groupID))
	third := save(3, now.Add(2*time.Hour), share(3, nil), share(4, nil))

	got, err := store.ListExpensesForUser(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{second, first}, ids(got), "payer or participant, newest first")

	got, err = store.ListExpensesForUser(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{third}, ids(got))

	got, err = store.ListExpensesForGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, []int64{second}, ids(got))

	got, err = store.ListExpensesBetween(ctx, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{second, first}, ids(got))

	got, err = store.ListExpensesBetween(ctx, 1, 4, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStore_Membership(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddFriendship(2, 1)
	store.AddGroupMember(10, 1, 3)

	ok, _ := store.AreFriends(ctx, 1, 2)
	assert.True(t, ok)
	ok, _ = store.AreFriends(ctx, 1, 3)
	assert.False(t, ok)
	ok, _ = store.UserExists(ctx, 3)
	assert.True(t, ok)
	ok, _ = store.GroupExists(ctx, 10)
	assert.True(t, ok)
	ok, _ = store.IsGroupMember(ctx, 10, 2)
	assert.False(t, ok)

	require.NoError(t, store.SaveLedgerEvent(ctx, domain.NewLedgerEvent(domain.EventExpenseCreated)))
	assert.Len(t, store.LedgerEvents(), 1)
}

func TestStore_CanceledContext(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.UpsertBalance(ctx, domain.FriendKey(1, 2), 1, now, add("1"))
	assert.ErrorIs(t, err, context.Canceled)
}
