package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/centavo-ledger/internal/domain/account"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account snapshot repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the snapshot read and
// upsert run inside the write protocol's transaction handle.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByUserID retrieves the snapshot for a user
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, user_id, balance, version, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.Balance,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get account", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// UpsertBalance writes the snapshot in one statement. First write creates the
// row at version 1; later writes set the balance and bump the version. The
// unique user_id constraint plus the single statement close the window where
// two first-time writers both see "no account".
func (r *AccountRepository) UpsertBalance(ctx context.Context, userID uuid.UUID, newBalance int64) error {
	query := `
		INSERT INTO accounts (id, user_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, 1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = EXCLUDED.balance, version = accounts.version + 1, updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query, uuid.New(), userID, newBalance)
	if err != nil {
		r.logger.Error("Failed to upsert account balance", "user_id", userID.String(), "error", err)
		return fmt.Errorf("failed to upsert account balance: %w", err)
	}

	return nil
}
