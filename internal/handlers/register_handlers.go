package handlers

import (
	"log/slog"

	"github.com/SscSPs/splitledger/cmd/docs"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/middleware"
	"github.com/SscSPs/splitledger/internal/platform/config"
	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// recalculateRate bounds the recalculation endpoint, which rewrites every balance row.
const recalculateRate = "5-M"

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	posthogClient *utils.PosthogClientWrapper,
) {
	r.GET("/", getHome)
	r.GET("/health", getHealth)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, posthogClient)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	posthogClient *utils.PosthogClientWrapper,
) {
	api := r.Group("/api/v1")

	// Admin routes authenticate with the operator token instead of a user JWT
	adminGuards := []gin.HandlerFunc{middleware.AdminAuthMiddleware(cfg.AdminTokenHash)}
	if recalcLimiter, err := middleware.NewRateLimiter(recalculateRate); err == nil {
		adminGuards = append([]gin.HandlerFunc{middleware.RateLimit(recalcLimiter)}, adminGuards...)
	} else {
		slog.Error("Failed to build admin rate limiter", slog.String("error", err.Error()))
	}
	RegisterAdminRoutes(api, service.Balance, posthogClient, adminGuards...)

	// Apply AuthMiddleware to the user-facing routes
	v1 := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	if cfg.RateLimit != "" {
		apiLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			slog.Error("Invalid RATE_LIMIT, API rate limiting disabled", slog.String("error", err.Error()))
		} else {
			v1.Use(middleware.RateLimit(apiLimiter))
		}
	}

	RegisterExpenseRoutes(v1, service.Expense)
	RegisterBalanceRoutes(v1, service.Balance, service.Expense)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
