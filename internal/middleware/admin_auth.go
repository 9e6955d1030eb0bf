package middleware

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// AdminTokenHeader carries the operator token for maintenance endpoints.
const AdminTokenHeader = "X-Admin-Token"

const adminKey = contextKey("admin")

// IsAdminRequest reports whether AdminAuthMiddleware admitted the request.
func IsAdminRequest(c *gin.Context) bool {
	return c.GetBool(string(adminKey))
}

// AdminAuthMiddleware admits requests whose X-Admin-Token matches the bcrypt hash.
// With an empty hash every request is rejected.
func AdminAuthMiddleware(tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		token := c.GetHeader(AdminTokenHeader)

		if tokenHash == "" || token == "" {
			logger.Warn("Admin request rejected", slog.Bool("token_present", token != ""))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin token required"})
			return
		}
		if !utils.CheckSecretHash(token, tokenHash) {
			logger.Warn("Admin token mismatch")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin token"})
			return
		}
		c.Set(string(adminKey), true)
		c.Next()
	}
}
