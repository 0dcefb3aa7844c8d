// Package config provides configuration structures and validation for both
// services. It handles environment-based configuration for the HTTP server,
// database, token secrets, the ledger write protocol and operational
// parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. Both binaries share the struct; the Auth.IdentityURL, Ledger
// and Kafka sections are only consulted by the ledger service.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
	Kafka       KafkaConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// AuthConfig carries the two HMAC secrets and the cross-service contract.
// ExternalJWTSecret signs user tokens minted at login; InternalJWTSecret
// signs the short-lived tokens the ledger presents when calling identity.
type AuthConfig struct {
	ExternalJWTSecret string
	ExternalTokenTTL  time.Duration
	InternalJWTSecret string
	InternalTokenTTL  time.Duration
	IdentityURL       string        // Base URL of the identity service (ledger only)
	ValidateTimeout   time.Duration // HTTP client timeout for remote token validation
}

// LedgerConfig tunes the transactional write protocol
type LedgerConfig struct {
	MaxWriteAttempts int           // Retry budget for serialization failures
	RetryBaseBackoff time.Duration // Backoff unit; attempt n sleeps 2^(n-1) * base
	RetryJitter      time.Duration // Upper bound of the random jitter added per sleep
	LockTimeout      time.Duration // SET LOCAL lock_timeout per write transaction
	StatementTimeout time.Duration // SET LOCAL statement_timeout per write transaction
	PendingKeyTTL    time.Duration // Retention of __PENDING__ idempotency reservations
	FinalizedKeyTTL  time.Duration // Retention of finalized idempotency records
	SweepInterval    time.Duration // How often expired idempotency rows are reclaimed
}

// KafkaConfig contains the optional audit event producer configuration
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	AuditTopic        string
	NumPartitions     int // Number of partitions for topic creation
	ReplicationFactor int // Replication factor for topic creation
	WriteTimeout      time.Duration
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Auth config
	if c.Auth.ExternalJWTSecret == "" {
		validationErrors = append(validationErrors, "EXTERNAL_JWT_SECRET is required")
	}
	if c.Auth.ExternalTokenTTL <= 0 {
		validationErrors = append(validationErrors, "EXTERNAL_TOKEN_TTL must be greater than 0")
	}
	if c.Auth.InternalJWTSecret == "" {
		validationErrors = append(validationErrors, "INTERNAL_JWT_SECRET is required")
	}
	if c.Auth.InternalTokenTTL <= 0 {
		validationErrors = append(validationErrors, "INTERNAL_TOKEN_TTL must be greater than 0")
	}
	if c.Auth.IdentityURL == "" {
		validationErrors = append(validationErrors, "IDENTITY_URL is required")
	}
	if c.Auth.ValidateTimeout <= 0 {
		validationErrors = append(validationErrors, "IDENTITY_VALIDATE_TIMEOUT must be greater than 0")
	}

	// Validate Ledger config
	if c.Ledger.MaxWriteAttempts <= 0 {
		validationErrors = append(validationErrors, "LEDGER_MAX_WRITE_ATTEMPTS must be greater than 0")
	}
	if c.Ledger.RetryBaseBackoff <= 0 {
		validationErrors = append(validationErrors, "LEDGER_RETRY_BASE_BACKOFF must be greater than 0")
	}
	if c.Ledger.RetryJitter < 0 {
		validationErrors = append(validationErrors, "LEDGER_RETRY_JITTER must not be negative")
	}
	if c.Ledger.LockTimeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_LOCK_TIMEOUT must be greater than 0")
	}
	if c.Ledger.StatementTimeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_STATEMENT_TIMEOUT must be greater than 0")
	}
	if c.Ledger.PendingKeyTTL <= 0 {
		validationErrors = append(validationErrors, "LEDGER_PENDING_KEY_TTL must be greater than 0")
	}
	if c.Ledger.FinalizedKeyTTL <= 0 {
		validationErrors = append(validationErrors, "LEDGER_FINALIZED_KEY_TTL must be greater than 0")
	}
	if c.Ledger.SweepInterval <= 0 {
		validationErrors = append(validationErrors, "LEDGER_SWEEP_INTERVAL must be greater than 0")
	}

	// Validate Kafka config, only when the audit producer is enabled
	if c.Kafka.Enabled {
		if c.Kafka.Brokers == "" {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.Kafka.AuditTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_AUDIT_TOPIC is required when KAFKA_ENABLED is true")
		}
		if c.Kafka.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
		}
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
