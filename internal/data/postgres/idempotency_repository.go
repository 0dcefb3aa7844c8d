package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/centavo-ledger/internal/domain/idempotency"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IdempotencyRepository implements the idempotency.Repository interface for
// PostgreSQL
type IdempotencyRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewIdempotencyRepository creates a new PostgreSQL idempotency repository
func NewIdempotencyRepository(logger *slog.Logger, db *persistence.PostgresDB) idempotency.Repository {
	return &IdempotencyRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction; the reservation and
// finalization must ride the same handle as the money movement.
func (r *IdempotencyRepository) WithTx(tx pgx.Tx) idempotency.Repository {
	return &IdempotencyRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetActive returns the non-expired record for key, or nil when absent.
// Expired rows are treated as missing; the sweeper reclaims them later.
func (r *IdempotencyRepository) GetActive(ctx context.Context, key string) (*idempotency.Record, error) {
	query := `
		SELECT id, key, response, created_at, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND expires_at > NOW()
	`

	var rec idempotency.Record
	err := r.querier.QueryRow(ctx, query, key).Scan(
		&rec.ID,
		&rec.Key,
		&rec.Response,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get idempotency record", "error", err)
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}

	return &rec, nil
}

// Reserve writes a __PENDING__ row for the key. An expired row that the
// sweeper has not reclaimed yet is taken over in place, so a stale key never
// blocks new writes until the next sweep. A live row belongs to another
// writer and surfaces as ErrKeyTaken.
func (r *IdempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) error {
	query := `
		INSERT INTO idempotency_keys (id, key, response, created_at, expires_at)
		VALUES ($1, $2, $3, NOW(), NOW() + $4)
		ON CONFLICT (key) DO UPDATE
		SET id = EXCLUDED.id, response = EXCLUDED.response, created_at = NOW(), expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= NOW()
	`

	result, err := r.querier.Exec(ctx, query, uuid.New(), key, idempotency.PendingSentinel, ttl)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Concurrent insert racing the upsert under Serializable.
			return idempotency.ErrKeyTaken
		}
		r.logger.Error("Failed to reserve idempotency key", "error", err)
		return fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	// Zero rows affected means the conflicting row is still live.
	if result.RowsAffected() == 0 {
		return idempotency.ErrKeyTaken
	}

	return nil
}

// Finalize stores the committed response and shortens the record's retention
func (r *IdempotencyRepository) Finalize(ctx context.Context, key string, response string, ttl time.Duration) error {
	query := `
		UPDATE idempotency_keys
		SET response = $1, expires_at = NOW() + $2
		WHERE key = $3
	`

	result, err := r.querier.Exec(ctx, query, response, ttl, key)
	if err != nil {
		r.logger.Error("Failed to finalize idempotency key", "error", err)
		return fmt.Errorf("failed to finalize idempotency key: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("idempotency key vanished during finalize")
	}

	return nil
}

// DeleteExpired reclaims rows past their expiry, returning the deleted count
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM idempotency_keys WHERE expires_at < NOW()`

	result, err := r.querier.Exec(ctx, query)
	if err != nil {
		r.logger.Error("Failed to delete expired idempotency keys", "error", err)
		return 0, fmt.Errorf("failed to delete expired idempotency keys: %w", err)
	}

	return result.RowsAffected(), nil
}
