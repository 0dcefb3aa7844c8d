package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/centavo-ledger/internal/domain/transaction"
	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Post(ctx context.Context, userID uuid.UUID, txType transaction.Type, amount int64, idempotencyKey string) ([]byte, error) {
	args := m.Called(ctx, userID, txType, amount, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ListTransactions(ctx context.Context, userID uuid.UUID, typeFilter transaction.Type) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockQueryService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ service.PostingService = (*MockPostingService)(nil)
	_ service.QueryService   = (*MockQueryService)(nil)
)

// setPrincipal injects an authenticated principal the way the auth guard does
func setPrincipal(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		httpapi.SetPrincipal(c, id)
		c.Next()
	}
}

func newTransactionRouter(principal uuid.UUID, posting *MockPostingService, query *MockQueryService) *gin.Engine {
	h := NewTransactionHandler(newTestLogger(), posting, query)
	router := gin.New()
	router.POST("/transactions", setPrincipal(principal), h.Create)
	router.GET("/transactions", setPrincipal(principal), h.List)
	return router
}

func TestTransactionHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)
		receipt := []byte(`{"id":"abc","user_id":"` + userID.String() + `","amount":50000,"type":"CREDIT"}`)

		posting.On("Post", mock.Anything, userID, transaction.TypeCredit, int64(50000), "").
			Return(receipt, nil).Once()

		router := newTransactionRouter(userID, posting, query)
		body, _ := json.Marshal(gin.H{"amount": 50000, "type": "CREDIT"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, receipt, rr.Body.Bytes())
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		posting.AssertExpectations(t)
	})

	t.Run("IdempotencyKeyForwarded", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)
		receipt := []byte(`{"id":"abc"}`)

		posting.On("Post", mock.Anything, userID, transaction.TypeCredit, int64(1500), "k1").
			Return(receipt, nil).Once()

		router := newTransactionRouter(userID, posting, query)
		body, _ := json.Marshal(gin.H{"amount": 1500, "type": "CREDIT"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "k1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		posting.AssertExpectations(t)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		posting.On("Post", mock.Anything, userID, transaction.TypeDebit, int64(1), "").
			Return(nil, transaction.ErrInsufficientBalance{CurrentBalance: 0, RequestedAmount: 1}).Once()

		router := newTransactionRouter(userID, posting, query)
		body, _ := json.Marshal(gin.H{"amount": 1, "type": "DEBIT"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "INSUFFICIENT_BALANCE", resp["error"])

		details, ok := resp["details"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(0), details["current_balance"])
		assert.Equal(t, float64(1), details["requested_amount"])
		assert.Equal(t, float64(1), details["shortage"])
		posting.AssertExpectations(t)
	})

	t.Run("NonPositiveAmountRejectedByBinding", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		router := newTransactionRouter(userID, posting, query)
		for _, amount := range []int64{0, -100} {
			body, _ := json.Marshal(gin.H{"amount": amount, "type": "CREDIT"})
			req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		}
		posting.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownType", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		router := newTransactionRouter(userID, posting, query)
		body, _ := json.Marshal(gin.H{"amount": 100, "type": "TRANSFER"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		posting.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RetriesExhausted", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		posting.On("Post", mock.Anything, userID, transaction.TypeCredit, int64(100), "").
			Return(nil, service.ErrRetriesExhausted).Once()

		router := newTransactionRouter(userID, posting, query)
		body, _ := json.Marshal(gin.H{"amount": 100, "type": "CREDIT"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
		posting.AssertExpectations(t)
	})
}

func TestTransactionHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	t.Run("All", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)
		entries := []*transaction.Transaction{
			{ID: uuid.New(), UserID: userID, Type: transaction.TypeDebit, Amount: 200, CreatedAt: time.Now()},
			{ID: uuid.New(), UserID: userID, Type: transaction.TypeCredit, Amount: 1000, CreatedAt: time.Now().Add(-time.Minute)},
		}

		query.On("ListTransactions", mock.Anything, userID, transaction.Type("")).Return(entries, nil).Once()

		router := newTransactionRouter(userID, posting, query)
		req, _ := http.NewRequest(http.MethodGet, "/transactions", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "DEBIT", got[0]["type"])
		query.AssertExpectations(t)
	})

	t.Run("FilteredByType", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		query.On("ListTransactions", mock.Anything, userID, transaction.TypeCredit).
			Return([]*transaction.Transaction{}, nil).Once()

		router := newTransactionRouter(userID, posting, query)
		req, _ := http.NewRequest(http.MethodGet, "/transactions?type=CREDIT", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", rr.Body.String())
		query.AssertExpectations(t)
	})

	t.Run("BadTypeFilter", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		router := newTransactionRouter(userID, posting, query)
		req, _ := http.NewRequest(http.MethodGet, "/transactions?type=REFUND", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		query.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ServiceError", func(t *testing.T) {
		posting := new(MockPostingService)
		query := new(MockQueryService)

		query.On("ListTransactions", mock.Anything, userID, transaction.Type("")).
			Return(nil, errors.New("db down")).Once()

		router := newTransactionRouter(userID, posting, query)
		req, _ := http.NewRequest(http.MethodGet, "/transactions", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		query.AssertExpectations(t)
	})
}
