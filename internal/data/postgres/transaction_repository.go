package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centavo-ledger/internal/domain/transaction"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL. The log is append-only; there is deliberately no update or
// delete operation.
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction log repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing the log append to
// commit atomically with the snapshot upsert.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends an entry to the log
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.UserID,
		string(t.Type),
		t.Amount,
		t.IdempotencyKey,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append transaction", "id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// ListByUser returns the user's entries newest first, optionally filtered by
// type
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, typeFilter transaction.Type) ([]*transaction.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, COALESCE(idempotency_key, ''), created_at
		FROM transactions
		WHERE user_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, userID, string(typeFilter))
	if err != nil {
		r.logger.Error("Failed to list transactions", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var entries []*transaction.Transaction
	for rows.Next() {
		var t transaction.Transaction
		var txType string
		if err := rows.Scan(&t.ID, &t.UserID, &txType, &t.Amount, &t.IdempotencyKey, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		t.Type = transaction.Type(txType)
		entries = append(entries, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}

	return entries, nil
}

// SumByUser computes the user's balance from the log itself. This is the
// invariant-enforcing formula; callers prefer the snapshot when one exists.
func (r *TransactionRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'CREDIT' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = $1
	`

	var sum int64
	if err := r.querier.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		r.logger.Error("Failed to sum transactions", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return sum, nil
}
