// Package identity wires the identity service's HTTP surface: registration,
// login, user management and the internal token validation endpoint the
// ledger depends on.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/centavo-ledger/internal/config"
	"github.com/centavo-ledger/internal/identity/handler"
	"github.com/centavo-ledger/internal/identity/service"
	"github.com/centavo-ledger/internal/metrics"
	"github.com/centavo-ledger/internal/platform/token"
	"github.com/gin-gonic/gin"
)

// Server handles HTTP requests and manages the service's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures the identity HTTP server
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	userService service.UserService,
	authService service.AuthService,
	userTokens *token.UserTokenManager,
	serviceTokens *token.ServiceTokenManager,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	userHandler := handler.NewUserHandler(log, userService)
	authHandler := handler.NewAuthHandler(log, authService)
	m := metrics.New(cfg.Application.Name)

	setupRouter(log, httpRouter, m, userTokens, serviceTokens, userHandler, authHandler)

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
