package handler

import (
	"context"
	"log/slog"

	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/gin-gonic/gin"
)

// StatusReporter abstracts the database health probe for testing
type StatusReporter interface {
	Status(ctx context.Context) (*persistence.Status, error)
}

// StatusHandler reports dependency health
type StatusHandler struct {
	db     StatusReporter
	logger *slog.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(logger *slog.Logger, db StatusReporter) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// Get reports the database version and connection usage
func (h *StatusHandler) Get(c *gin.Context) {
	status, err := h.db.Status(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to probe database status", "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondOK(c, status)
}
