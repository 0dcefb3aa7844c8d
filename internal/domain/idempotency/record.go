package idempotency

import (
	"time"

	"github.com/google/uuid"
)

// PendingSentinel marks a reservation whose transaction has not committed
// yet. A record holding it exists only while a write is mid-flight (or after
// a crash, until the sweeper reclaims it).
const PendingSentinel = "__PENDING__"

// Record binds a client-chosen key to the serialized response of the single
// write it produced.
type Record struct {
	ID        uuid.UUID
	Key       string
	Response  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Pending reports whether the record is a mid-flight reservation
func (r *Record) Pending() bool {
	return r.Response == PendingSentinel
}
