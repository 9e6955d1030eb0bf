package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/dto"
	"github.com/SscSPs/splitledger/internal/middleware"
	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// adminHandler serves operator maintenance endpoints.
type adminHandler struct {
	balanceService portssvc.BalanceRecalculatorSvc
	posthogClient  *utils.PosthogClientWrapper
}

// RegisterAdminRoutes registers the maintenance routes behind the given middleware.
// posthogClient may be nil.
func RegisterAdminRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceRecalculatorSvc, posthogClient *utils.PosthogClientWrapper, guards ...gin.HandlerFunc) {
	h := &adminHandler{balanceService: balanceService, posthogClient: posthogClient}

	admin := rg.Group("/admin", guards...)
	admin.POST("/balances/recalculate", h.recalculateBalances)
}

// recalculateBalances godoc
// @Summary Rebuild every balance
// @Description Clears all balance rows and replays every persisted expense in one transaction
// @Tags admin
// @Produce  json
// @Param   X-Admin-Token header string true "Operator token"
// @Success 200 {object} dto.RecalculateResponse
// @Failure 403 {object} ErrorResponse "Missing or invalid admin token"
// @Failure 409 {object} ErrorResponse "Balance row contention, retry"
// @Failure 429 {object} ErrorResponse "Too many requests"
// @Failure 500 {object} ErrorResponse "Recalculation failed"
// @Router /admin/balances/recalculate [post]
func (h *adminHandler) recalculateBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to recalculate all balances")

	started := time.Now()
	replayed, err := h.balanceService.RecalculateAll(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Recalculation failed")
		return
	}

	elapsed := time.Since(started)
	logger.Info("Balances recalculated", slog.Int("expenses_replayed", replayed), slog.Duration("elapsed", elapsed))
	middleware.PosthogEvent(c, h.posthogClient, "admin_balances_recalculated", map[string]any{
		"expenses_replayed": replayed,
		"duration_ms":       elapsed.Milliseconds(),
	})
	c.JSON(http.StatusOK, dto.RecalculateResponse{ExpensesReplayed: replayed})
}
