package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/centavo-ledger/internal/config"
	"github.com/centavo-ledger/internal/data/postgres"
	"github.com/centavo-ledger/internal/identity"
	"github.com/centavo-ledger/internal/identity/service"
	"github.com/centavo-ledger/internal/logger"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/centavo-ledger/internal/platform/token"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("identity")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize token managers
	userTokens := token.NewUserTokenManager(cfg.Auth.ExternalJWTSecret, cfg.Auth.ExternalTokenTTL)
	serviceTokens := token.NewServiceTokenManager(cfg.Auth.InternalJWTSecret, cfg.Auth.InternalTokenTTL)

	// Initialize repositories and services
	userRepo := postgres.NewUserRepository(log, postgresDB)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(log, userRepo, userTokens)

	// Initialize REST server
	server := identity.NewServer(log, cfg, userService, authService, userTokens, serviceTokens)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	postgresDB.Close()

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
