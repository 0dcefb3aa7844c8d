package ledger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/centavo-ledger/internal/ledger/handler"
	ledgermw "github.com/centavo-ledger/internal/ledger/middleware"
	"github.com/centavo-ledger/internal/metrics"
	"github.com/centavo-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the ledger service
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	m *metrics.Metrics,
	validator ledgermw.TokenValidator,
	transactionHandler *handler.TransactionHandler,
	balanceHandler *handler.BalanceHandler,
	statusHandler *handler.StatusHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(m.Middleware())

	requireUser := ledgermw.RequireUser(validator)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Transaction log operations
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", requireUser, transactionHandler.Create)
			transactions.GET("", requireUser, transactionHandler.List)
		}

		// Snapshot balance
		v1.GET("/balance", requireUser, balanceHandler.Get)

		// Dependency health; unauthenticated, serves monitoring
		v1.GET("/status", statusHandler.Get)
	}

	// Prometheus scrape endpoint
	r.GET("/metrics", m.Handler())

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
