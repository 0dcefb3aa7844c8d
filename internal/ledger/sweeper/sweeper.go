// Package sweeper reclaims expired idempotency records on a fixed interval.
// Stale __PENDING__ reservations from crashed writers and finalized records
// past retention both go through here; the write path never deletes rows.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/centavo-ledger/internal/domain/idempotency"
)

// Sweeper periodically deletes expired idempotency rows
type Sweeper struct {
	idemRepo idempotency.Repository
	logger   *slog.Logger
	interval time.Duration
}

func NewSweeper(logger *slog.Logger, idemRepo idempotency.Repository, interval time.Duration) *Sweeper {
	return &Sweeper{
		idemRepo: idemRepo,
		logger:   logger,
		interval: interval,
	}
}

// Start begins sweeping until the context is canceled
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting idempotency sweeper", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Idempotency sweeper stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Error("Error during idempotency sweep", "error", err)
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	deleted, err := s.idemRepo.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("Reclaimed expired idempotency records", "count", deleted)
	} else {
		s.logger.Debug("No expired idempotency records found.")
	}
	return nil
}
