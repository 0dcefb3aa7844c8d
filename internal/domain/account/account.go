package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is the consolidated per-user snapshot of the transaction log.
// Balance is non-negative integer cents; Version increments by exactly one
// per committed write and totals the user's commit order.
type Account struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
