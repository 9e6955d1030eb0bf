package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceType distinguishes the two kinds of running balance.
type BalanceType string

const (
	// FriendToFriend rows hold the net between two users.
	FriendToFriend BalanceType = "FRIEND_TO_FRIEND"
	// UserToGroup rows hold the net between a user and a group.
	UserToGroup BalanceType = "USER_TO_GROUP"
)

// BalanceKey identifies one aggregate row.
//
// For FriendToFriend, FirstID is the lower user id and SecondID the higher one; a
// positive balance means the higher-id user owes the lower-id user.
// For UserToGroup, FirstID is the user and SecondID the group; a positive balance
// means the group owes the user.
type BalanceKey struct {
	Type     BalanceType `json:"type"`
	FirstID  int64       `json:"firstID"`
	SecondID int64       `json:"secondID"`
}

// FriendKey returns the canonical key for the pair, regardless of argument order.
func FriendKey(a, b int64) BalanceKey {
	if a > b {
		a, b = b, a
	}
	return BalanceKey{Type: FriendToFriend, FirstID: a, SecondID: b}
}

// GroupKey returns the key of the balance between userID and groupID.
func GroupKey(userID, groupID int64) BalanceKey {
	return BalanceKey{Type: UserToGroup, FirstID: userID, SecondID: groupID}
}

func (k BalanceKey) String() string {
	if k.Type == FriendToFriend {
		return fmt.Sprintf("friend(%d,%d)", k.FirstID, k.SecondID)
	}
	return fmt.Sprintf("group(user=%d,group=%d)", k.FirstID, k.SecondID)
}

// Less orders keys so that multi-row updates always lock rows in the same order.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	if k.FirstID != o.FirstID {
		return k.FirstID < o.FirstID
	}
	return k.SecondID < o.SecondID
}

// BalanceFunc maps the current balance (zero when the row is absent) to the new one.
type BalanceFunc func(current decimal.Decimal) decimal.Decimal

// AddDelta returns a BalanceFunc that adds delta.
func AddDelta(delta decimal.Decimal) BalanceFunc {
	return func(current decimal.Decimal) decimal.Decimal {
		return current.Add(delta)
	}
}

// BalanceAggregate is a running balance row.
type BalanceAggregate struct {
	Key           BalanceKey      `json:"key"`
	Balance       decimal.Decimal `json:"balance"`
	LastExpenseID int64           `json:"lastExpenseID"`
	Version       int64           `json:"version"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// FromPerspective returns the balance as seen by userID: positive means userID is owed.
func (a BalanceAggregate) FromPerspective(userID int64) decimal.Decimal {
	if a.Key.Type == FriendToFriend && a.Key.SecondID == userID {
		return a.Balance.Neg()
	}
	return a.Balance
}

// Counterpart returns the other side of the row relative to userID: the friend for
// friend rows, the group for group rows.
func (a BalanceAggregate) Counterpart(userID int64) int64 {
	if a.Key.Type == FriendToFriend && a.Key.FirstID != userID {
		return a.Key.FirstID
	}
	return a.Key.SecondID
}
