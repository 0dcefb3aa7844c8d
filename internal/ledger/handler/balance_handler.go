package handler

import (
	"log/slog"

	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// BalanceHandler serves the snapshot balance endpoint
type BalanceHandler struct {
	queryService service.QueryService
	logger       *slog.Logger
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(logger *slog.Logger, queryService service.QueryService) *BalanceHandler {
	return &BalanceHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// Get returns the authenticated user's balance
func (h *BalanceHandler) Get(c *gin.Context) {
	principal, ok := httpapi.GetPrincipal(c)
	if !ok {
		httpapi.RespondUnauthorized(c, "")
		return
	}

	balance, err := h.queryService.GetBalance(c.Request.Context(), principal)
	if err != nil {
		h.logger.Error("Failed to get balance", "user_id", principal, "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondOK(c, BalanceResponse{Amount: balance})
}
