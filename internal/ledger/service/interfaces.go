package service

import (
	"context"

	"github.com/centavo-ledger/internal/domain/transaction"
	"github.com/google/uuid"
)

// PostingService runs the transactional write protocol
type PostingService interface {
	// Post appends a transaction and updates the user's snapshot atomically.
	// It returns the serialized response body so that idempotent replays hand
	// every caller byte-identical output.
	// Returns ErrInvalidAmount, ErrInsufficientBalance, or ErrRetriesExhausted.
	Post(ctx context.Context, userID uuid.UUID, txType transaction.Type, amount int64, idempotencyKey string) ([]byte, error)
}

// QueryService serves the read-only ledger endpoints
type QueryService interface {
	// ListTransactions returns the user's entries newest first, optionally
	// filtered by direction
	ListTransactions(ctx context.Context, userID uuid.UUID, typeFilter transaction.Type) ([]*transaction.Transaction, error)

	// GetBalance returns the snapshot balance; a user with no account row yet
	// has balance zero
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}
