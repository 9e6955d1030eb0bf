package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathPrefixesToSkip lists path prefixes that should not be tracked by PostHog
var pathPrefixesToSkip = []string{
	"/health",
	"/swagger",
}

// OperatorDistinctID attributes events raised through the admin token, which carries no user.
const OperatorDistinctID = "operator"

func shouldSkipPath(path string) bool {
	for _, prefix := range pathPrefixesToSkip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// PosthogMiddleware creates a Gin middleware handler that tracks API events with PostHog
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip if PostHog is not initialized or path is in skip list
		if posthogClient == nil || !posthogClient.IsInitialized() || shouldSkipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		// Process request first
		c.Next()

		// Skip if there was an error processing the request
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// Get user ID from context (set by auth middleware)
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			// No user ID, can't track event
			return
		}

		// Create event name from method and route path (e.g., "POST /api/v1/expenses" -> "post_api_v1_expenses")
		route := strings.TrimPrefix(c.FullPath(), "/")

		// Skip unmatched routes (e.g., 404s)
		if route == "" {
			return
		}
		eventName := strings.ToLower(c.Request.Method) + "_" + strings.NewReplacer("/", "_", ":", "").Replace(route)

		// Prepare event properties
		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}

		if requestID := GetRequestIDFromCtx(c.Request.Context()); requestID != "" {
			props["request_id"] = requestID
		}

		// Add route parameters if any
		if len(c.Params) > 0 {
			params := make(map[string]string)
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		// Send event to PostHog
		posthogClient.Enqueue(strconv.FormatInt(userID, 10), eventName, props)
	}
}

// PosthogEvent sends a custom event from a handler. Requests admitted by the admin
// token are attributed to OperatorDistinctID; other requests without a user are ignored.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if posthogClient == nil || !posthogClient.IsInitialized() {
		return
	}

	var distinctID string
	if userID, exists := GetUserIDFromContext(c); exists {
		distinctID = strconv.FormatInt(userID, 10)
	} else if IsAdminRequest(c) {
		distinctID = OperatorDistinctID
	} else {
		return
	}

	// Ensure properties is not nil
	if properties == nil {
		properties = make(map[string]any)
	}

	// Add request context
	properties["method"] = c.Request.Method
	properties["path"] = c.Request.URL.Path

	if requestID := GetRequestIDFromCtx(c.Request.Context()); requestID != "" {
		properties["request_id"] = requestID
	}

	// Send custom event
	posthogClient.Enqueue(distinctID, eventName, properties)
}
