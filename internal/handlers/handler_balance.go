package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/dto"
	"github.com/SscSPs/splitledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// sharedExpensesLimit caps the expenses listed on a friend's balance detail.
const sharedExpensesLimit = 50

// balanceHandler serves balance queries for the authenticated user.
type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
	expenseService portssvc.ExpenseReaderSvc
}

func newBalanceHandler(bs portssvc.BalanceSvcFacade, es portssvc.ExpenseReaderSvc) *balanceHandler {
	return &balanceHandler{balanceService: bs, expenseService: es}
}

// RegisterBalanceRoutes registers the balance query routes.
func RegisterBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade, expenseService portssvc.ExpenseReaderSvc) {
	h := newBalanceHandler(balanceService, expenseService)

	balances := rg.Group("/balances")
	{
		balances.GET("/summary", h.getSummary)
		balances.GET("/friends", h.listFriendBalances)
		balances.GET("/friends/:friendID", h.getFriendBalance)
		balances.GET("/groups", h.listGroupBalancesForUser)
	}
	rg.GET("/groups/:groupID/balances", h.listGroupBalances)
}

// getSummary godoc
// @Summary Get the caller's balance summary
// @Description Net position across all friends and groups, split into owed and owes
// @Tags balances
// @Produce  json
// @Success 200 {object} dto.UserBalanceSummaryResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /balances/summary [get]
func (h *balanceHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	summary, err := h.balanceService.GetUserBalanceSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve balance summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserBalanceSummaryResponse(*summary))
}

// listFriendBalances godoc
// @Summary List balances with friends
// @Description Every friend the caller shares a balance row with, from the caller's perspective
// @Tags balances
// @Produce  json
// @Success 200 {object} dto.ListFriendBalancesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /balances/friends [get]
func (h *balanceHandler) listFriendBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	balances, err := h.balanceService.GetFriendBalances(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list friend balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFriendBalancesResponse(balances))
}

// getFriendBalance godoc
// @Summary Get the balance with one friend
// @Description Positive balance means the friend owes the caller. Includes up to 50 shared expenses, newest first.
// @Tags balances
// @Produce  json
// @Param   friendID path int true "Friend user ID"
// @Success 200 {object} dto.FriendDetailResponse
// @Failure 400 {object} ErrorResponse "Invalid friend ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /balances/friends/{friendID} [get]
func (h *balanceHandler) getFriendBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	friendID, ok := parseIDParam(c, "friendID")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("friend_id", friendID))
	balance, err := h.balanceService.GetFriendBalance(c.Request.Context(), userID, friendID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve friend balance")
		return
	}
	shared, err := h.expenseService.ListExpensesBetween(c.Request.Context(), userID, friendID, sharedExpensesLimit)
	if err != nil {
		respondError(c, logger, err, "Failed to list shared expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ToFriendDetailResponse(*balance, shared))
}

// listGroupBalancesForUser godoc
// @Summary List the caller's balances with groups
// @Description Positive balance means the group owes the caller
// @Tags balances
// @Produce  json
// @Success 200 {object} dto.ListGroupBalancesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /balances/groups [get]
func (h *balanceHandler) listGroupBalancesForUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	balances, err := h.balanceService.GetGroupBalancesForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list group balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGroupBalancesResponse(balances))
}

// listGroupBalances godoc
// @Summary List every member balance of a group
// @Description Member balances of a group sum to zero. Caller must be a member.
// @Tags balances
// @Produce  json
// @Param   groupID path int true "Group ID"
// @Success 200 {object} dto.ListGroupBalancesResponse
// @Failure 400 {object} ErrorResponse "Invalid group ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Caller is not a member"
// @Failure 404 {object} ErrorResponse "Group not found"
// @Security BearerAuth
// @Router /groups/{groupID}/balances [get]
func (h *balanceHandler) listGroupBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := parseIDParam(c, "groupID")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("group_id", groupID))
	if err := h.balanceService.AuthorizeGroupMember(c.Request.Context(), groupID, userID); err != nil {
		respondError(c, logger, err, "Failed to authorize group access")
		return
	}

	balances, err := h.balanceService.GetGroupBalances(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to list group balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGroupBalancesResponse(balances))
}
