package accounting

import (
	"sort"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Delta is the signed amount one event adds to one aggregate row.
type Delta struct {
	Key    domain.BalanceKey
	Amount decimal.Decimal
}

// FriendDelta returns the change to the (payer, participant) friend row when the
// participant owes amount to the payer.
//
// Friend rows are positive when the higher id owes the lower id, so:
//   - payer < participant: +amount (participant is the higher id and owes)
//   - payer > participant: -amount
func FriendDelta(payerID, participantID int64, amount decimal.Decimal) Delta {
	signed := amount
	if payerID > participantID {
		signed = amount.Neg()
	}
	return Delta{Key: domain.FriendKey(payerID, participantID), Amount: signed}
}

// ExpenseDeltas returns every delta that applying e produces.
//
// Friend rows: each active, unpaid participant other than the payer owes their share.
// Group rows: each active, unpaid group participant other than the payer owes the
// group their share; the payer, when participating through the same group, is owed
// the shares of all other active members of that group. Paid participants keep
// counting toward the payer's group credit because settling does not touch that row.
func ExpenseDeltas(e domain.Expense) []Delta {
	deltas := make([]Delta, 0, len(e.Participations)*2)

	// shares owed to the payer per group, by everyone except the payer
	groupShares := make(map[int64]decimal.Decimal)
	for _, p := range e.Participations {
		if !p.Active || p.UserID == e.PayerID {
			continue
		}
		if groupID, ok := p.GroupID(); ok {
			groupShares[groupID] = groupShares[groupID].Add(p.OwedAmount)
		}
	}

	for _, p := range e.Participations {
		if !p.Active {
			continue
		}
		groupID, inGroup := p.GroupID()

		if p.UserID == e.PayerID {
			if inGroup {
				deltas = append(deltas, Delta{Key: domain.GroupKey(p.UserID, groupID), Amount: groupShares[groupID]})
			}
			continue
		}
		if p.Paid {
			continue
		}

		deltas = append(deltas, FriendDelta(e.PayerID, p.UserID, p.OwedAmount))
		if inGroup {
			deltas = append(deltas, Delta{Key: domain.GroupKey(p.UserID, groupID), Amount: p.OwedAmount.Neg()})
		}
	}
	return Combine(deltas)
}

// ReversalDeltas returns the exact negation of ExpenseDeltas(e).
func ReversalDeltas(e domain.Expense) []Delta {
	return Negate(ExpenseDeltas(e))
}

// PaymentToggleDeltas returns the deltas for flipping p's paid flag to isPaid.
//
// Marking paid cancels p's friend contribution and its debt to the group; marking
// unpaid restores both. The payer's group row is never touched.
// p must carry the paid state from before the toggle; an unchanged flag, an inactive
// participation or the payer produce no deltas.
func PaymentToggleDeltas(e domain.Expense, p domain.Participation, isPaid bool) []Delta {
	if !p.Active || p.UserID == e.PayerID || p.Paid == isPaid {
		return nil
	}

	deltas := []Delta{FriendDelta(e.PayerID, p.UserID, p.OwedAmount)}
	if groupID, ok := p.GroupID(); ok {
		deltas = append(deltas, Delta{Key: domain.GroupKey(p.UserID, groupID), Amount: p.OwedAmount.Neg()})
	}
	if isPaid {
		deltas = Negate(deltas)
	}
	return Combine(deltas)
}

// Negate flips the sign of every delta.
func Negate(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{Key: d.Key, Amount: d.Amount.Neg()}
	}
	return out
}

// Combine sums deltas per key and returns them in lock order.
// Keys whose amounts cancel out are kept so their rows still get stamped.
func Combine(sets ...[]Delta) []Delta {
	sums := make(map[domain.BalanceKey]decimal.Decimal)
	for _, set := range sets {
		for _, d := range set {
			sums[d.Key] = sums[d.Key].Add(d.Amount)
		}
	}

	out := make([]Delta, 0, len(sums))
	for k, amount := range sums {
		out = append(out, Delta{Key: k, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Less(out[j].Key)
	})
	return out
}
