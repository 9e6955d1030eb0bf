package dto

import (
	"time"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UserBalanceSummaryResponse is the net position of a user.
type UserBalanceSummaryResponse struct {
	UserID     int64           `json:"userID"`
	TotalOwed  decimal.Decimal `json:"totalOwed"`
	TotalOwes  decimal.Decimal `json:"totalOwes"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// FriendBalanceResponse is the balance with one friend. Positive: the friend owes the user.
type FriendBalanceResponse struct {
	FriendID      int64           `json:"friendID"`
	Balance       decimal.Decimal `json:"balance"`
	OwedByFriend  decimal.Decimal `json:"owedByFriend"`
	OwedToFriend  decimal.Decimal `json:"owedToFriend"`
	LastExpenseID int64           `json:"lastExpenseID,omitempty"`
	LastUpdatedAt *time.Time      `json:"lastUpdatedAt,omitempty"`
}

// GroupBalanceResponse is the balance between a user and a group. Positive: the group owes the user.
type GroupBalanceResponse struct {
	GroupID       int64           `json:"groupID"`
	UserID        int64           `json:"userID"`
	Balance       decimal.Decimal `json:"balance"`
	LastExpenseID int64           `json:"lastExpenseID"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// FriendDetailResponse is the balance with one friend plus the expenses both take part in.
type FriendDetailResponse struct {
	FriendBalanceResponse
	SharedExpenses []ExpenseResponse `json:"sharedExpenses"`
}

// ListFriendBalancesResponse wraps a list of friend balances.
type ListFriendBalancesResponse struct {
	Balances []FriendBalanceResponse `json:"balances"`
}

// ListGroupBalancesResponse wraps a list of group balances.
type ListGroupBalancesResponse struct {
	Balances []GroupBalanceResponse `json:"balances"`
}

// RecalculateResponse reports how many expenses a recalculation replayed.
type RecalculateResponse struct {
	ExpensesReplayed int `json:"expensesReplayed"`
}

func ToUserBalanceSummaryResponse(s domain.UserBalanceSummary) UserBalanceSummaryResponse {
	return UserBalanceSummaryResponse{
		UserID:     s.UserID,
		TotalOwed:  s.TotalOwed,
		TotalOwes:  s.TotalOwes,
		NetBalance: s.NetBalance,
	}
}

func ToFriendBalanceResponse(f domain.FriendBalance) FriendBalanceResponse {
	resp := FriendBalanceResponse{
		FriendID:      f.FriendID,
		Balance:       f.Balance,
		OwedByFriend:  f.OwedByFriend(),
		OwedToFriend:  f.OwedToFriend(),
		LastExpenseID: f.LastExpenseID,
	}
	if !f.LastUpdatedAt.IsZero() {
		at := f.LastUpdatedAt
		resp.LastUpdatedAt = &at
	}
	return resp
}

func ToFriendDetailResponse(f domain.FriendBalance, shared []domain.Expense) FriendDetailResponse {
	return FriendDetailResponse{
		FriendBalanceResponse: ToFriendBalanceResponse(f),
		SharedExpenses:        ToListExpensesResponse(shared).Expenses,
	}
}

func ToListFriendBalancesResponse(fs []domain.FriendBalance) ListFriendBalancesResponse {
	out := make([]FriendBalanceResponse, len(fs))
	for i, f := range fs {
		out[i] = ToFriendBalanceResponse(f)
	}
	return ListFriendBalancesResponse{Balances: out}
}

func ToListGroupBalancesResponse(gs []domain.GroupBalance) ListGroupBalancesResponse {
	out := make([]GroupBalanceResponse, len(gs))
	for i, g := range gs {
		out[i] = GroupBalanceResponse{
			GroupID:       g.GroupID,
			UserID:        g.UserID,
			Balance:       g.Balance,
			LastExpenseID: g.LastExpenseID,
			LastUpdatedAt: g.LastUpdatedAt,
		}
	}
	return ListGroupBalancesResponse{Balances: out}
}
