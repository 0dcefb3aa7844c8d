// Package ledger wires the ledger service's HTTP surface: the transactional
// write endpoint, log and balance reads, and the status probe. Authentication
// is mediated remotely through the identity service.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/centavo-ledger/internal/config"
	"github.com/centavo-ledger/internal/ledger/handler"
	ledgermw "github.com/centavo-ledger/internal/ledger/middleware"
	"github.com/centavo-ledger/internal/ledger/service"
	"github.com/centavo-ledger/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Server handles HTTP requests and manages the service's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures the ledger HTTP server
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	validator ledgermw.TokenValidator,
	postingService service.PostingService,
	queryService service.QueryService,
	statusReporter handler.StatusReporter,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	transactionHandler := handler.NewTransactionHandler(log, postingService, queryService)
	balanceHandler := handler.NewBalanceHandler(log, queryService)
	statusHandler := handler.NewStatusHandler(log, statusReporter)
	m := metrics.New(cfg.Application.Name)

	setupRouter(log, httpRouter, m, validator, transactionHandler, balanceHandler, statusHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
