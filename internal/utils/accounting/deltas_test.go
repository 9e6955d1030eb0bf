package accounting_test

import (
	"testing"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/SscSPs/splitledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func gid(id int64) *int64 {
	return &id
}

func friendShare(userID int64, amount string) domain.Participation {
	return domain.Participation{UserID: userID, OwedAmount: d(amount), Provenance: domain.ProvenanceFriend, Active: true}
}

func groupShare(userID, groupID int64, amount string) domain.Participation {
	return domain.Participation{UserID: userID, OwedAmount: d(amount), Provenance: domain.ProvenanceGroup, ProvenanceID: gid(groupID), Active: true}
}

func expense(id, payer int64, total string, ps ...domain.Participation) domain.Expense {
	return domain.Expense{ExpenseID: id, PayerID: payer, TotalAmount: d(total), Participations: ps}
}

// nonZero flattens deltas into key -> amount, skipping zero amounts.
func nonZero(deltas []accounting.Delta) map[domain.BalanceKey]string {
	out := make(map[domain.BalanceKey]string)
	for _, dl := range deltas {
		if !dl.Amount.IsZero() {
			out[dl.Key] = dl.Amount.String()
		}
	}
	return out
}

func TestFriendDelta_SignConvention(t *testing.T) {
	tests := []struct {
		name        string
		payer       int64
		participant int64
		want        string
	}{
		{name: "lower id pays", payer: 1, participant: 2, want: "40"},
		{name: "higher id pays", payer: 2, participant: 1, want: "-40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := accounting.FriendDelta(tt.payer, tt.participant, d("40"))
			assert.Equal(t, domain.FriendKey(1, 2), delta.Key)
			assert.Equal(t, tt.want, delta.Amount.String())
		})
	}
}

func TestExpenseDeltas_FriendOnly(t *testing.T) {
	e := expense(1, 1, "120", friendShare(1, "40"), friendShare(2, "40"), friendShare(3, "40"))

	got := nonZero(accounting.ExpenseDeltas(e))

	assert.Equal(t, map[domain.BalanceKey]string{
		domain.FriendKey(1, 2): "40",
		domain.FriendKey(1, 3): "40",
	}, got)
}

func TestExpenseDeltas_PayerNotParticipating(t *testing.T) {
	e := expense(1, 3, "50", friendShare(1, "20"), friendShare(2, "30"))

	got := nonZero(accounting.ExpenseDeltas(e))

	assert.Equal(t, map[domain.BalanceKey]string{
		domain.FriendKey(1, 3): "-20",
		domain.FriendKey(2, 3): "-30",
	}, got)
}

func TestExpenseDeltas_GroupConservation(t *testing.T) {
	e := expense(1, 1, "90", groupShare(1, 10, "30"), groupShare(2, 10, "30"), groupShare(3, 10, "30"))

	deltas := accounting.ExpenseDeltas(e)
	got := nonZero(deltas)

	assert.Equal(t, "60", got[domain.GroupKey(1, 10)], "payer is owed T - a")
	assert.Equal(t, "-30", got[domain.GroupKey(2, 10)])
	assert.Equal(t, "-30", got[domain.GroupKey(3, 10)])

	groupSum := decimal.Zero
	for _, dl := range deltas {
		if dl.Key.Type == domain.UserToGroup && dl.Key.SecondID == 10 {
			groupSum = groupSum.Add(dl.Amount)
		}
	}
	assert.True(t, groupSum.IsZero(), "group rows must sum to zero, got %s", groupSum)
}

func TestExpenseDeltas_MixedFriendAndGroup(t *testing.T) {
	// A pays 90: A and C through group 10, B as a friend; only C's share touches group rows
	e := expense(1, 1, "90", groupShare(1, 10, "30"), friendShare(2, "30"), groupShare(3, 10, "30"))

	got := nonZero(accounting.ExpenseDeltas(e))

	assert.Equal(t, map[domain.BalanceKey]string{
		domain.FriendKey(1, 2): "30",
		domain.FriendKey(1, 3): "30",
		domain.GroupKey(1, 10): "30",
		domain.GroupKey(3, 10): "-30",
	}, got)
}

func TestExpenseDeltas_SkipsInactive(t *testing.T) {
	inactive := friendShare(3, "30")
	inactive.Active = false
	e := expense(1, 1, "60", friendShare(2, "30"), inactive)

	got := nonZero(accounting.ExpenseDeltas(e))

	assert.Equal(t, map[domain.BalanceKey]string{domain.FriendKey(1, 2): "30"}, got)
}

func TestReversalDeltas_Cancellation(t *testing.T) {
	expenses := []domain.Expense{
		expense(1, 1, "120", friendShare(1, "40"), friendShare(2, "40"), friendShare(3, "40")),
		expense(2, 2, "90", groupShare(1, 10, "30"), groupShare(2, 10, "30"), friendShare(3, "30")),
		expense(3, 5, "10.01", friendShare(4, "5.00"), friendShare(6, "5.01")),
	}
	for _, e := range expenses {
		combined := accounting.Combine(accounting.ExpenseDeltas(e), accounting.ReversalDeltas(e))
		require.NotEmpty(t, combined)
		assert.Empty(t, nonZero(combined), "expense %d", e.ExpenseID)
	}
}

func TestPaymentToggleDeltas(t *testing.T) {
	e := expense(1, 1, "90", groupShare(1, 10, "30"), friendShare(2, "30"), groupShare(3, 10, "30"))
	c, _ := e.Participant(3)

	paid := nonZero(accounting.PaymentToggleDeltas(e, c, true))
	assert.Equal(t, map[domain.BalanceKey]string{
		domain.FriendKey(1, 3): "-30",
		domain.GroupKey(3, 10): "30",
	}, paid)
	_, touchesPayerGroup := paid[domain.GroupKey(1, 10)]
	assert.False(t, touchesPayerGroup)

	c.Paid = true
	unpaid := nonZero(accounting.PaymentToggleDeltas(e, c, false))
	assert.Equal(t, map[domain.BalanceKey]string{
		domain.FriendKey(1, 3): "30",
		domain.GroupKey(3, 10): "-30",
	}, unpaid)
}

func TestPaymentToggleDeltas_NoOps(t *testing.T) {
	e := expense(1, 1, "60", friendShare(1, "30"), friendShare(2, "30"))
	payer, _ := e.Participant(1)
	friend, _ := e.Participant(2)

	assert.Nil(t, accounting.PaymentToggleDeltas(e, payer, true), "payer")
	assert.Nil(t, accounting.PaymentToggleDeltas(e, friend, false), "already unpaid")

	friend.Paid = true
	assert.Nil(t, accounting.PaymentToggleDeltas(e, friend, true), "already paid")

	friend.Paid = false
	friend.Active = false
	assert.Nil(t, accounting.PaymentToggleDeltas(e, friend, true), "inactive")
}

func TestPaymentToggle_MatchesReplayOfPaidExpense(t *testing.T) {
	e := expense(1, 1, "90", groupShare(1, 10, "30"), friendShare(2, "30"), groupShare(3, 10, "30"))
	c, _ := e.Participant(3)

	incremental := accounting.Combine(accounting.ExpenseDeltas(e), accounting.PaymentToggleDeltas(e, c, true))

	settled := e.Clone()
	settled.Participations[2].Paid = true
	replayed := accounting.ExpenseDeltas(settled)

	assert.Equal(t, nonZero(replayed), nonZero(incremental))
}

func TestCombine_SumsAndOrders(t *testing.T) {
	k1 := domain.FriendKey(1, 2)
	k2 := domain.GroupKey(1, 10)
	k3 := domain.FriendKey(1, 3)

	got := accounting.Combine(
		[]accounting.Delta{{Key: k2, Amount: d("5")}, {Key: k1, Amount: d("10")}},
		[]accounting.Delta{{Key: k1, Amount: d("-10")}, {Key: k3, Amount: d("1.5")}},
	)

	require.Len(t, got, 3)
	assert.Equal(t, k1, got[0].Key)
	assert.True(t, got[0].Amount.IsZero())
	assert.Equal(t, k3, got[1].Key)
	assert.Equal(t, "1.5", got[1].Amount.String())
	assert.Equal(t, k2, got[2].Key)
	assert.Equal(t, "5", got[2].Amount.String())
}
