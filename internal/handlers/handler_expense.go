package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/dto"
	"github.com/SscSPs/splitledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// expenseHandler handles HTTP requests that drive the expense lifecycle.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es}
}

// RegisterExpenseRoutes registers routes related to expenses.
func RegisterExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expenseID", h.getExpense)
		expenses.PUT("/:expenseID", h.updateExpense)
		expenses.DELETE("/:expenseID", h.deleteExpense)
		expenses.PATCH("/:expenseID/participants/:userID/payment", h.setPaymentStatus)
	}
	rg.GET("/groups/:groupID/expenses", h.listGroupExpenses)
}

// listExpenses godoc
// @Summary List the caller's expenses
// @Description Expenses the caller paid or shares, newest first
// @Tags expenses
// @Produce  json
// @Param   limit query int false "Maximum number of expenses"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, ok := parseLimitQuery(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	expenses, err := h.expenseService.ListExpensesForUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, logger, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses))
}

// listGroupExpenses godoc
// @Summary List a group's expenses
// @Description Expenses with at least one share attributed to the group, newest first. Caller must be a member.
// @Tags expenses
// @Produce  json
// @Param   groupID path int true "Group ID"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse "Invalid group ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Caller is not a member"
// @Failure 404 {object} ErrorResponse "Group not found"
// @Security BearerAuth
// @Router /groups/{groupID}/expenses [get]
func (h *expenseHandler) listGroupExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := parseIDParam(c, "groupID")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	expenses, err := h.expenseService.ListExpensesForGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, logger.With(slog.Int64("group_id", groupID)), err, "Failed to list group expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses))
}

// createExpense godoc
// @Summary Create an expense
// @Description Records a shared expense and applies it to every affected balance
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid input or shares that do not add up"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Unknown user or group"
// @Failure 409 {object} ErrorResponse "Balance row contention, retry"
// @Failure 500 {object} ErrorResponse "Failed to create expense"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create expense")
		return
	}

	logger.Info("Expense created", slog.Int64("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// getExpense godoc
// @Summary Get an expense
// @Description Retrieves an expense visible to the caller (payer or participant)
// @Tags expenses
// @Produce  json
// @Param   expenseID path int true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid expense ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Caller is not part of the expense"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Security BearerAuth
// @Router /expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID, ok := parseIDParam(c, "expenseID")
	if !ok {
		return
	}
	actorID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), expenseID, actorID)
	if err != nil {
		respondError(c, logger.With(slog.Int64("expense_id", expenseID)), err, "Failed to retrieve expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// updateExpense godoc
// @Summary Update an expense
// @Description Replaces an expense and its participants; balances move by the difference
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path int true "Expense ID"
// @Param   expense body dto.UpdateExpenseRequest true "New expense details"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid input or caller not allowed to edit"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 409 {object} ErrorResponse "Balance row contention, retry"
// @Security BearerAuth
// @Router /expenses/{expenseID} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID, ok := parseIDParam(c, "expenseID")
	if !ok {
		return
	}
	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	actorID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("expense_id", expenseID))
	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), expenseID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update expense")
		return
	}

	logger.Info("Expense updated")
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Removes an expense and its contribution to every balance. Payer only.
// @Tags expenses
// @Param   expenseID path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Caller is not the payer"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 409 {object} ErrorResponse "Balance row contention, retry"
// @Security BearerAuth
// @Router /expenses/{expenseID} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID, ok := parseIDParam(c, "expenseID")
	if !ok {
		return
	}
	actorID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("expense_id", expenseID))
	if err := h.expenseService.DeleteExpense(c.Request.Context(), expenseID, actorID); err != nil {
		respondError(c, logger, err, "Failed to delete expense")
		return
	}

	logger.Info("Expense deleted")
	c.Status(http.StatusNoContent)
}

// setPaymentStatus godoc
// @Summary Settle or reopen a participant's share
// @Description Marks one participation as paid or unpaid. Payer only; unchanged status is a no-op.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path int true "Expense ID"
// @Param   userID path int true "Participant user ID"
// @Param   status body dto.SetPaymentStatusRequest true "New payment status"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid input or caller is not the payer"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Expense or participant not found"
// @Failure 409 {object} ErrorResponse "Balance row contention, retry"
// @Security BearerAuth
// @Router /expenses/{expenseID}/participants/{userID}/payment [patch]
func (h *expenseHandler) setPaymentStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID, ok := parseIDParam(c, "expenseID")
	if !ok {
		return
	}
	participantID, ok := parseIDParam(c, "userID")
	if !ok {
		return
	}
	var req dto.SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Paid == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: paid is required"})
		return
	}
	actorID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("expense_id", expenseID), slog.Int64("participant_id", participantID))
	expense, err := h.expenseService.SetPaymentStatus(c.Request.Context(), expenseID, participantID, *req.Paid, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update payment status")
		return
	}

	logger.Info("Payment status set", slog.Bool("paid", *req.Paid))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
