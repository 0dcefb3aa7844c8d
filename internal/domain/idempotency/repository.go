package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrKeyTaken indicates the unique key constraint fired on reservation: a
// concurrent writer holds the key. The write transaction is doomed; the
// caller retries and observes the winner's record.
var ErrKeyTaken = errors.New("idempotency key already reserved")

// Repository manages idempotency records. All mutating operations are meant
// to run inside the write transaction via WithTx.
type Repository interface {
	// GetActive returns the non-expired record for key, or nil when the key
	// is unknown or its record has expired.
	GetActive(ctx context.Context, key string) (*Record, error)

	// Reserve inserts a __PENDING__ record expiring after ttl. Returns
	// ErrKeyTaken when the key is already present.
	Reserve(ctx context.Context, key string, ttl time.Duration) error

	// Finalize replaces the reservation's response and shortens its expiry
	Finalize(ctx context.Context, key string, response string, ttl time.Duration) error

	// DeleteExpired reclaims rows with expires_at in the past, returning the
	// deleted count. Maintenance path, never part of a write.
	DeleteExpired(ctx context.Context) (int64, error)

	WithTx(tx pgx.Tx) Repository
}
