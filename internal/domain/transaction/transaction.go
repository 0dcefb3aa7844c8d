package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type defines the two posting directions
type Type string

const (
	TypeCredit Type = "CREDIT"
	TypeDebit  Type = "DEBIT"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// ParseType validates a wire-level type string
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeCredit:
		return TypeCredit, nil
	case TypeDebit:
		return TypeDebit, nil
	default:
		return "", ErrInvalidType
	}
}

// Transaction is one immutable entry in the append-only log. Amounts are
// positive integer cents; the direction lives in Type.
type Transaction struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           Type      `json:"type"`
	Amount         int64     `json:"amount"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// New builds a log entry for the given principal. Amount must be positive.
func New(userID uuid.UUID, txType Type, amount int64, idempotencyKey string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if txType != TypeCredit && txType != TypeDebit {
		return nil, ErrInvalidType
	}
	return &Transaction{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           txType,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}, nil
}

// Delta is the signed effect of the entry on a balance
func (t *Transaction) Delta() int64 {
	if t.Type == TypeDebit {
		return -t.Amount
	}
	return t.Amount
}

// ErrInsufficientBalance indicates a debit that would drive the balance
// negative. It carries the details payload surfaced to the client.
type ErrInsufficientBalance struct {
	CurrentBalance  int64
	RequestedAmount int64
}

func (e ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, requested %d", e.CurrentBalance, e.RequestedAmount)
}

// Shortage is how far the debit overshoots the available balance
func (e ErrInsufficientBalance) Shortage() int64 {
	return e.RequestedAmount - e.CurrentBalance
}
