package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages the append-only transaction log
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	// ListByUser returns the user's entries ordered by created_at descending.
	// An empty typeFilter returns both directions.
	ListByUser(ctx context.Context, userID uuid.UUID, typeFilter Type) ([]*Transaction, error)
	// SumByUser computes sum(CREDIT) - sum(DEBIT) over the user's log
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}
