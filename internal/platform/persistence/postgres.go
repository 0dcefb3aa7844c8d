package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centavo-ledger/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier supports database operations for both pool and transactions
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TxBeginner opens explicit transactions with options. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Ensure interfaces are satisfied (compile-time check)
var _ Querier = (*pgxpool.Pool)(nil)
var _ Querier = (pgx.Tx)(nil)
var _ TxBeginner = (*pgxpool.Pool)(nil)

type PostgresDB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Status reports database health for the status endpoint
type Status struct {
	DatabaseVersion string `json:"database_version"`
	MaxConnections  int    `json:"max_connections"`
	OpenConnections int32  `json:"open_connections"`
	IdleConnections int32  `json:"idle_connections"`
}

func NewPostgresDB(ctx context.Context, logger *slog.Logger, cfg *config.PostgresConfig) (*PostgresDB, error) {
	err := RunMigrations(cfg.URL, cfg.MigrationsPath)
	if err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	logger.Info("Connected to PostgreSQL")

	return &PostgresDB{
		pool:   pool,
		logger: logger,
	}, nil
}

func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *PostgresDB) Close() {
	db.pool.Close()
	db.logger.Info("Closed PostgreSQL connection")
}

// ExecuteTx runs fn in a transaction opened with txOptions, rolling back on
// error or panic and committing otherwise. The original error from fn is
// preserved for errors.Is/As so callers can classify retryable failures.
func ExecuteTx(ctx context.Context, db TxBeginner, txOptions pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx) // Attempt rollback on panic
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %w, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

// Status queries server version, configured connection ceiling and pool usage
func (db *PostgresDB) Status(ctx context.Context) (*Status, error) {
	var version string
	if err := db.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to query database version: %w", err)
	}

	var maxConns string
	if err := db.pool.QueryRow(ctx, "SHOW max_connections").Scan(&maxConns); err != nil {
		return nil, fmt.Errorf("failed to query max_connections: %w", err)
	}
	maxConnections := 0
	if _, err := fmt.Sscanf(maxConns, "%d", &maxConnections); err != nil {
		return nil, fmt.Errorf("unexpected max_connections value %q: %w", maxConns, err)
	}

	stat := db.pool.Stat()
	return &Status{
		DatabaseVersion: version,
		MaxConnections:  maxConnections,
		OpenConnections: stat.TotalConns(),
		IdleConnections: stat.IdleConns(),
	}, nil
}
