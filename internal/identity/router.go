package identity

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/centavo-ledger/internal/identity/handler"
	identitymw "github.com/centavo-ledger/internal/identity/middleware"
	"github.com/centavo-ledger/internal/metrics"
	"github.com/centavo-ledger/internal/middleware"
	"github.com/centavo-ledger/internal/platform/token"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the identity service
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	m *metrics.Metrics,
	userTokens *token.UserTokenManager,
	serviceTokens *token.ServiceTokenManager,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(m.Middleware())

	requireUser := identitymw.RequireUser(userTokens)
	requireService := identitymw.RequireService(serviceTokens)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// User registration and management
		users := v1.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.GET("", requireUser, userHandler.List)
			users.GET("/:id", requireUser, userHandler.GetByID)
			users.PATCH("/:id", requireUser, userHandler.Update)
			users.DELETE("/:id", requireUser, userHandler.Delete)
		}

		// Authentication operations
		auth := v1.Group("/auth")
		{
			auth.POST("", authHandler.Login)
			auth.POST("/validate-user-jwt", requireService, authHandler.ValidateUserJWT)
		}
	}

	// Prometheus scrape endpoint
	r.GET("/metrics", m.Handler())

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
