package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPosthog struct {
	posthog.Client
	captures []posthog.Capture
}

func (c *capturingPosthog) Enqueue(msg posthog.Message) error {
	if capture, ok := msg.(posthog.Capture); ok {
		c.captures = append(c.captures, capture)
	}
	return nil
}

func TestShouldSkipPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/health", true},
		{"/swagger/index.html", true},
		{"/swagger/doc.json", true},
		{"/api/v1/expenses", false},
		{"/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldSkipPath(tt.path))
		})
	}
}

func TestPosthogMiddleware_TracksAuthenticatedRoutesOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	analytics := &capturingPosthog{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(userIDKey), int64(7))
		c.Next()
	})
	r.Use(PosthogMiddleware(utils.NewPosthogClientWrapper(analytics, nil)))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/swagger/*any", ok)
	r.GET("/health", ok)
	r.GET("/api/v1/expenses/:expenseID", ok)

	for _, path := range []string{"/swagger/index.html", "/health", "/api/v1/expenses/3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, analytics.captures, 1)
	assert.Equal(t, "get_api_v1_expenses_expenseID", analytics.captures[0].Event)
	assert.Equal(t, "7", analytics.captures[0].DistinctId)
}

func TestPosthogEvent_Attribution(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		setup    func(c *gin.Context)
		wantID   string
		captured bool
	}{
		{name: "user", setup: func(c *gin.Context) { c.Set(string(userIDKey), int64(3)) }, wantID: "3", captured: true},
		{name: "operator", setup: func(c *gin.Context) { c.Set(string(adminKey), true) }, wantID: OperatorDistinctID, captured: true},
		{name: "anonymous", setup: func(*gin.Context) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analytics := &capturingPosthog{}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/balances/recalculate", nil)
			tt.setup(c)

			PosthogEvent(c, utils.NewPosthogClientWrapper(analytics, nil), "custom", nil)

			if !tt.captured {
				assert.Empty(t, analytics.captures)
				return
			}
			require.Len(t, analytics.captures, 1)
			assert.Equal(t, tt.wantID, analytics.captures[0].DistinctId)
			assert.Equal(t, http.MethodPost, analytics.captures[0].Properties["method"])
		})
	}

	assert.NotPanics(t, func() {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		PosthogEvent(c, nil, "custom", nil)
	})
}
