package handler

// CreateTransactionRequest represents a posting request. The idempotency key
// travels in the x-idempotency-key header, not the body.
type CreateTransactionRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Type   string `json:"type" binding:"required,oneof=CREDIT DEBIT"`
}

// BalanceResponse represents the snapshot balance in API responses
type BalanceResponse struct {
	Amount int64 `json:"amount"`
}

// InsufficientBalanceDetails is the details payload of a rejected debit
type InsufficientBalanceDetails struct {
	CurrentBalance  int64 `json:"current_balance"`
	RequestedAmount int64 `json:"requested_amount"`
	Shortage        int64 `json:"shortage"`
}
