package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/centavo-ledger/internal/config"
	"github.com/centavo-ledger/internal/domain/account"
	"github.com/centavo-ledger/internal/domain/idempotency"
	"github.com/centavo-ledger/internal/domain/transaction"
	"github.com/centavo-ledger/internal/platform/messaging/producers"
	"github.com/centavo-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRetriesExhausted indicates the write kept losing serialization
// certification for the whole retry budget
var ErrRetriesExhausted = errors.New("write retries exhausted")

// PostingReceipt is the client-facing result of a committed posting. Its
// serialization is what gets cached for idempotent replay.
type PostingReceipt struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
}

// PostingServiceImpl implements the PostingService interface. Every posting
// runs in one Serializable database transaction; conflicts abort the whole
// transaction and are retried from scratch by the outer loop.
type PostingServiceImpl struct {
	db       persistence.TxBeginner
	txRepo   transaction.Repository
	acctRepo account.Repository
	idemRepo idempotency.Repository
	audit    producers.MessagePublisher // nil when the audit producer is disabled
	cfg      *config.LedgerConfig
	logger   *slog.Logger
}

// NewPostingService creates the write-protocol service. audit may be nil.
func NewPostingService(
	logger *slog.Logger,
	db persistence.TxBeginner,
	txRepo transaction.Repository,
	acctRepo account.Repository,
	idemRepo idempotency.Repository,
	audit producers.MessagePublisher,
	cfg *config.LedgerConfig,
) PostingService {
	return &PostingServiceImpl{
		db:       db,
		txRepo:   txRepo,
		acctRepo: acctRepo,
		idemRepo: idemRepo,
		audit:    audit,
		cfg:      cfg,
		logger:   logger,
	}
}

// Post drives the retry loop around single write attempts. Serialization
// conflicts, deadlocks and lost idempotency-key races are retried with
// exponential backoff; validation failures surface immediately.
func (s *PostingServiceImpl) Post(ctx context.Context, userID uuid.UUID, txType transaction.Type, amount int64, idempotencyKey string) ([]byte, error) {
	if amount <= 0 {
		return nil, transaction.ErrInvalidAmount
	}
	if txType != transaction.TypeCredit && txType != transaction.TypeDebit {
		return nil, transaction.ErrInvalidType
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxWriteAttempts; attempt++ {
		body, err := s.attempt(ctx, userID, txType, amount, idempotencyKey)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == s.cfg.MaxWriteAttempts {
			break
		}

		backoff := s.backoff(attempt)
		s.logger.Debug("Retrying posting after conflict",
			"user_id", userID,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.logger.Error("Posting retries exhausted",
		"user_id", userID,
		"attempts", s.cfg.MaxWriteAttempts,
		"error", lastErr,
	)
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, s.cfg.MaxWriteAttempts, lastErr)
}

// attempt runs one full pass of the write protocol inside a Serializable
// transaction. A nil error means the body is final: either a fresh commit or
// a replay of a previously finalized record.
func (s *PostingServiceImpl) attempt(ctx context.Context, userID uuid.UUID, txType transaction.Type, amount int64, idempotencyKey string) ([]byte, error) {
	var (
		body       []byte
		entry      *transaction.Transaction
		newBalance int64
		newVersion int64
	)

	err := persistence.ExecuteTx(ctx, s.db, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		// SET LOCAL takes no bind parameters; values come from validated config.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.cfg.LockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("failed to set lock_timeout: %w", err)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", s.cfg.StatementTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("failed to set statement_timeout: %w", err)
		}

		idemRepo := s.idemRepo.WithTx(tx)

		if idempotencyKey != "" {
			rec, err := idemRepo.GetActive(ctx, idempotencyKey)
			if err != nil {
				return err
			}
			if rec != nil {
				if rec.Pending() {
					// A concurrent writer holds the key mid-flight. Back off and
					// look again; its commit or rollback decides our fate.
					return idempotency.ErrKeyTaken
				}
				body = []byte(rec.Response)
				return nil
			}

			if err := idemRepo.Reserve(ctx, idempotencyKey, s.cfg.PendingKeyTTL); err != nil {
				return err
			}
		}

		priorBalance, priorVersion := int64(0), int64(0)
		acct, err := s.acctRepo.WithTx(tx).GetByUserID(ctx, userID)
		if err != nil {
			var notFound account.ErrAccountNotFound
			if !errors.As(err, &notFound) {
				return err
			}
			// First posting for this user; the snapshot row is created below.
		} else {
			priorBalance, priorVersion = acct.Balance, acct.Version
		}

		e, err := transaction.New(userID, txType, amount, idempotencyKey)
		if err != nil {
			return err
		}

		proposed := priorBalance + e.Delta()
		if proposed < 0 {
			return transaction.ErrInsufficientBalance{
				CurrentBalance:  priorBalance,
				RequestedAmount: amount,
			}
		}

		if err := s.txRepo.WithTx(tx).Create(ctx, e); err != nil {
			return err
		}
		if err := s.acctRepo.WithTx(tx).UpsertBalance(ctx, userID, proposed); err != nil {
			return err
		}

		serialized, err := json.Marshal(PostingReceipt{
			ID:     e.ID.String(),
			UserID: userID.String(),
			Amount: amount,
			Type:   string(txType),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal posting receipt: %w", err)
		}

		if idempotencyKey != "" {
			if err := idemRepo.Finalize(ctx, idempotencyKey, string(serialized), s.cfg.FinalizedKeyTTL); err != nil {
				return err
			}
		}

		body = serialized
		entry = e
		newBalance = proposed
		newVersion = priorVersion + 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	// entry stays nil on a replay; the original commit already published.
	if entry != nil {
		s.publishAudit(ctx, entry, newBalance, newVersion)
	}

	return body, nil
}

// publishAudit emits the committed posting to the audit topic. Best effort;
// the write already committed.
func (s *PostingServiceImpl) publishAudit(ctx context.Context, entry *transaction.Transaction, balance, version int64) {
	if s.audit == nil {
		return
	}

	event := producers.AuditEvent{
		TransactionID: entry.ID.String(),
		UserID:        entry.UserID.String(),
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		Balance:       balance,
		Version:       version,
		CommittedAt:   entry.CreatedAt.UTC(),
	}
	if err := s.audit.Publish(ctx, event.UserID, &event); err != nil {
		s.logger.Warn("Failed to publish audit event", "transaction_id", event.TransactionID, "error", err)
	}
}

// backoff computes 2^(attempt-1) * base plus uniform jitter
func (s *PostingServiceImpl) backoff(attempt int) time.Duration {
	d := s.cfg.RetryBaseBackoff * time.Duration(1<<(attempt-1))
	if s.cfg.RetryJitter > 0 {
		d += time.Duration(rand.Int63n(int64(s.cfg.RetryJitter)))
	}
	return d
}

// retryable reports whether the attempt failed in a way another pass can fix:
// a serialization conflict, a deadlock, or a lost race for the idempotency key
func retryable(err error) bool {
	if errors.Is(err, idempotency.ErrKeyTaken) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrSerializationFailure || pgErr.Code == pgerrDeadlockDetected
	}
	return false
}

const (
	pgerrSerializationFailure = "40001"
	pgerrDeadlockDetected     = "40P01"
)
