package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/centavo-ledger/internal/config"
	"github.com/centavo-ledger/internal/data/postgres"
	"github.com/centavo-ledger/internal/ledger"
	"github.com/centavo-ledger/internal/ledger/service"
	"github.com/centavo-ledger/internal/ledger/sweeper"
	"github.com/centavo-ledger/internal/logger"
	"github.com/centavo-ledger/internal/platform/identityclient"
	"github.com/centavo-ledger/internal/platform/messaging/producers"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/centavo-ledger/internal/platform/token"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger")
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

	// Remote token validation against the identity service
	serviceTokens := token.NewServiceTokenManager(cfg.Auth.InternalJWTSecret, cfg.Auth.InternalTokenTTL)
	identityClient := identityclient.NewClient(cfg.Auth.IdentityURL, cfg.Auth.ValidateTimeout, serviceTokens, log)

	// Optional audit event producer
	var auditProducer *producers.AuditEventProducer
	var audit producers.MessagePublisher
	if cfg.Kafka.Enabled {
		auditProducer, err = producers.NewAuditEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize audit Kafka producer", "error", err)
			os.Exit(1)
		}
		audit = auditProducer
		log.Info("Audit event producer initialized", "topic", cfg.Kafka.AuditTopic)
	} else {
		log.Info("Audit event producer disabled")
	}

	// Initialize repositories and services
	txRepo := postgres.NewTransactionRepository(log, postgresDB)
	acctRepo := postgres.NewAccountRepository(log, postgresDB)
	idemRepo := postgres.NewIdempotencyRepository(log, postgresDB)
	postingService := service.NewPostingService(log, postgresDB.Pool(), txRepo, acctRepo, idemRepo, audit, &cfg.Ledger)
	queryService := service.NewQueryService(txRepo, acctRepo)

	// Background reclamation of expired idempotency records
	idemSweeper := sweeper.NewSweeper(log, idemRepo, cfg.Ledger.SweepInterval)
	go idemSweeper.Start(appCtx)

	// Initialize REST server
	server := ledger.NewServer(log, cfg, identityClient, postingService, queryService, postgresDB)
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

	// Cancel the application context to stop the sweeper
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if auditProducer != nil {
		if closeErr := auditProducer.Close(); closeErr != nil {
			log.Error("Error closing audit producer", "error", closeErr)
		}
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
