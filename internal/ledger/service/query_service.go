package service

import (
	"context"
	"errors"

	"github.com/centavo-ledger/internal/domain/account"
	"github.com/centavo-ledger/internal/domain/transaction"
	"github.com/google/uuid"
)

// QueryServiceImpl implements the QueryService interface
type QueryServiceImpl struct {
	txRepo   transaction.Repository
	acctRepo account.Repository
}

// NewQueryService creates a new ledger query service
func NewQueryService(txRepo transaction.Repository, acctRepo account.Repository) QueryService {
	return &QueryServiceImpl{
		txRepo:   txRepo,
		acctRepo: acctRepo,
	}
}

// ListTransactions returns the user's entries newest first
func (s *QueryServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, typeFilter transaction.Type) ([]*transaction.Transaction, error) {
	return s.txRepo.ListByUser(ctx, userID, typeFilter)
}

// GetBalance reads the snapshot row. When no snapshot exists the balance is
// derived from the log itself, which yields zero for a user who never posted.
func (s *QueryServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	acct, err := s.acctRepo.GetByUserID(ctx, userID)
	if err != nil {
		var notFound account.ErrAccountNotFound
		if errors.As(err, &notFound) {
			return s.txRepo.SumByUser(ctx, userID)
		}
		return 0, err
	}
	return acct.Balance, nil
}
