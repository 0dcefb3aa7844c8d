package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account snapshot persistence operations
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Account, error)

	// UpsertBalance writes the snapshot in a single statement: it creates the
	// row at version 1 for a first-time user, or sets the balance and bumps
	// the version otherwise. Single-statement so two first-time writers
	// cannot both observe "no account" and both insert.
	UpsertBalance(ctx context.Context, userID uuid.UUID, newBalance int64) error

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates the user has no snapshot row yet
type ErrAccountNotFound struct {
	UserID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found for user: " + e.UserID.String()
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}
