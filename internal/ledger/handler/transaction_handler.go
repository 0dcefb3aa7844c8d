package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/centavo-ledger/internal/domain/transaction"
	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the client-chosen retry key
const IdempotencyKeyHeader = "x-idempotency-key"

// TransactionHandler handles HTTP requests for the transaction log
type TransactionHandler struct {
	postingService service.PostingService
	queryService   service.QueryService
	logger         *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, postingService service.PostingService, queryService service.QueryService) *TransactionHandler {
	return &TransactionHandler{
		postingService: postingService,
		queryService:   queryService,
		logger:         logger,
	}
}

// Create posts a transaction for the authenticated user. Replays of a
// finalized idempotency key return the cached body, also as 200.
func (h *TransactionHandler) Create(c *gin.Context) {
	principal, ok := httpapi.GetPrincipal(c)
	if !ok {
		httpapi.RespondUnauthorized(c, "")
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txType, err := transaction.ParseType(req.Type)
	if err != nil {
		httpapi.RespondBadRequest(c, "Type must be CREDIT or DEBIT")
		return
	}

	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)

	body, err := h.postingService.Post(c.Request.Context(), principal, txType, req.Amount, idempotencyKey)
	if err != nil {
		var insufficient transaction.ErrInsufficientBalance
		switch {
		case errors.Is(err, transaction.ErrInvalidAmount):
			httpapi.RespondError(c, http.StatusBadRequest, httpapi.CodeInvalidAmount, "Amount must be a positive integer")
		case errors.As(err, &insufficient):
			httpapi.RespondErrorDetails(c, http.StatusBadRequest, httpapi.CodeInsufficientBalance,
				"Debit exceeds available balance", InsufficientBalanceDetails{
					CurrentBalance:  insufficient.CurrentBalance,
					RequestedAmount: insufficient.RequestedAmount,
					Shortage:        insufficient.Shortage(),
				})
		default:
			h.logger.Error("Failed to post transaction", "user_id", principal, "error", err)
			httpapi.RespondInternalError(c)
		}
		return
	}

	httpapi.RespondReplay(c, body)
}

// List returns the user's transactions newest first, optionally filtered by
// the type query parameter
func (h *TransactionHandler) List(c *gin.Context) {
	principal, ok := httpapi.GetPrincipal(c)
	if !ok {
		httpapi.RespondUnauthorized(c, "")
		return
	}

	var typeFilter transaction.Type
	if raw := c.Query("type"); raw != "" {
		parsed, err := transaction.ParseType(raw)
		if err != nil {
			httpapi.RespondBadRequest(c, "Type filter must be CREDIT or DEBIT")
			return
		}
		typeFilter = parsed
	}

	entries, err := h.queryService.ListTransactions(c.Request.Context(), principal, typeFilter)
	if err != nil {
		h.logger.Error("Failed to list transactions", "user_id", principal, "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	if entries == nil {
		entries = []*transaction.Transaction{}
	}
	httpapi.RespondOK(c, entries)
}
