package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalanceSummary is the net position of a user across all friends and groups.
type UserBalanceSummary struct {
	UserID     int64           `json:"userID"`
	TotalOwed  decimal.Decimal `json:"totalOwed"`
	TotalOwes  decimal.Decimal `json:"totalOwes"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// NewUserBalanceSummary splits a net balance into its owed/owes halves.
func NewUserBalanceSummary(userID int64, net decimal.Decimal) UserBalanceSummary {
	s := UserBalanceSummary{UserID: userID, TotalOwed: decimal.Zero, TotalOwes: decimal.Zero, NetBalance: net}
	if net.IsPositive() {
		s.TotalOwed = net
	} else if net.IsNegative() {
		s.TotalOwes = net.Neg()
	}
	return s
}

// FriendBalance is the balance with one friend, from UserID's perspective.
type FriendBalance struct {
	UserID        int64           `json:"userID"`
	FriendID      int64           `json:"friendID"`
	Balance       decimal.Decimal `json:"balance"` // positive: friend owes user
	LastExpenseID int64           `json:"lastExpenseID"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// OwedByFriend is the part of the balance the friend owes the user.
func (f FriendBalance) OwedByFriend() decimal.Decimal {
	if f.Balance.IsPositive() {
		return f.Balance
	}
	return decimal.Zero
}

// OwedToFriend is the part of the balance the user owes the friend.
func (f FriendBalance) OwedToFriend() decimal.Decimal {
	if f.Balance.IsNegative() {
		return f.Balance.Neg()
	}
	return decimal.Zero
}

// GroupBalance is the balance between a user and a group. Positive: the group owes the user.
type GroupBalance struct {
	GroupID       int64           `json:"groupID"`
	UserID        int64           `json:"userID"`
	Balance       decimal.Decimal `json:"balance"`
	LastExpenseID int64           `json:"lastExpenseID"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToFriendBalance reorients a friend row for userID.
func ToFriendBalance(userID int64, a BalanceAggregate) FriendBalance {
	return FriendBalance{
		UserID:        userID,
		FriendID:      a.Counterpart(userID),
		Balance:       a.FromPerspective(userID),
		LastExpenseID: a.LastExpenseID,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}

// ToGroupBalance converts a group row.
func ToGroupBalance(a BalanceAggregate) GroupBalance {
	return GroupBalance{
		GroupID:       a.Key.SecondID,
		UserID:        a.Key.FirstID,
		Balance:       a.Balance,
		LastExpenseID: a.LastExpenseID,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}
