package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/centavo-ledger/internal/domain/user"
	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/identity/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, firstName, lastName, password string) (*user.User, error) {
	args := m.Called(ctx, email, firstName, lastName, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, update service.UserUpdate) (*user.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ service.UserService = (*MockUserService)(nil)

func sampleUser() *user.User {
	now := time.Now()
	return &user.User{
		ID:           uuid.New(),
		Email:        "alice@x",
		PasswordHash: "$2a$10$digestdigestdigest",
		FirstName:    "Alice",
		LastName:     "Smith",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// setPrincipal injects an authenticated principal the way the auth guard does
func setPrincipal(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		httpapi.SetPrincipal(c, id)
		c.Next()
	}
}

func TestUserHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)
		u := sampleUser()

		mockService.On("Register", mock.Anything, "alice@x", "Alice", "Smith", "s3cretpass").
			Return(u, nil).Once()

		router := gin.New()
		router.POST("/users", h.Register)

		body, _ := json.Marshal(gin.H{
			"email":      "alice@x",
			"first_name": "Alice",
			"last_name":  "Smith",
			"password":   "s3cretpass",
		})
		req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, u.ID.String(), resp["id"])
		assert.Equal(t, "alice@x", resp["email"])

		// The digest must never appear in any serialization of the user.
		assert.NotContains(t, rr.Body.String(), "password")
		assert.NotContains(t, rr.Body.String(), u.PasswordHash)
		mockService.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)

		mockService.On("Register", mock.Anything, "alice@x", "Alice", "Smith", "s3cretpass").
			Return(nil, user.ErrEmailConflict{Email: "alice@x"}).Once()

		router := gin.New()
		router.POST("/users", h.Register)

		body, _ := json.Marshal(gin.H{
			"email":      "alice@x",
			"first_name": "Alice",
			"last_name":  "Smith",
			"password":   "s3cretpass",
		})
		req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "CONFLICT")
		mockService.AssertExpectations(t)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)

		router := gin.New()
		router.POST("/users", h.Register)

		body, _ := json.Marshal(gin.H{
			"email":      "alice@x",
			"first_name": "Alice",
			"last_name":  "Smith",
			"password":   "short",
		})
		req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Register")
	})
}

func TestUserHandler_GetByID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Self", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)
		u := sampleUser()

		mockService.On("GetByID", mock.Anything, u.ID).Return(u, nil).Once()

		router := gin.New()
		router.GET("/users/:id", setPrincipal(u.ID), h.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/users/"+u.ID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), u.PasswordHash)
		mockService.AssertExpectations(t)
	})

	t.Run("OtherUserForbidden", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)

		router := gin.New()
		router.GET("/users/:id", setPrincipal(uuid.New()), h.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/users/"+uuid.New().String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		mockService.AssertNotCalled(t, "GetByID")
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)

		router := gin.New()
		router.GET("/users/:id", setPrincipal(uuid.New()), h.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/users/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	h := NewUserHandler(newTestLogger(), mockService)
	users := []*user.User{sampleUser(), sampleUser()}

	mockService.On("List", mock.Anything).Return(users, nil).Once()

	router := gin.New()
	router.GET("/users", setPrincipal(uuid.New()), h.List)

	req, _ := http.NewRequest(http.MethodGet, "/users", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	assert.Len(t, views, 2)
	assert.NotContains(t, rr.Body.String(), "password")
	mockService.AssertExpectations(t)
}

func TestUserHandler_Update(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Self", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)
		u := sampleUser()
		u.FirstName = "Alicia"

		mockService.On("Update", mock.Anything, u.ID, mock.MatchedBy(func(up service.UserUpdate) bool {
			return up.FirstName != nil && *up.FirstName == "Alicia" && up.Email == nil
		})).Return(u, nil).Once()

		router := gin.New()
		router.PATCH("/users/:id", setPrincipal(u.ID), h.Update)

		body, _ := json.Marshal(gin.H{"first_name": "Alicia"})
		req, _ := http.NewRequest(http.MethodPatch, "/users/"+u.ID.String(), bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Alicia")
		mockService.AssertExpectations(t)
	})

	t.Run("OtherUserForbidden", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)

		router := gin.New()
		router.PATCH("/users/:id", setPrincipal(uuid.New()), h.Update)

		body, _ := json.Marshal(gin.H{"first_name": "Eve"})
		req, _ := http.NewRequest(http.MethodPatch, "/users/"+uuid.New().String(), bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		mockService.AssertNotCalled(t, "Update")
	})
}

func TestUserHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Self", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)
		id := uuid.New()

		mockService.On("Delete", mock.Anything, id).Return(nil).Once()

		router := gin.New()
		router.DELETE("/users/:id", setPrincipal(id), h.Delete)

		req, _ := http.NewRequest(http.MethodDelete, "/users/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		h := NewUserHandler(newTestLogger(), mockService)
		id := uuid.New()

		mockService.On("Delete", mock.Anything, id).Return(user.ErrUserNotFound{ID: id}).Once()

		router := gin.New()
		router.DELETE("/users/:id", setPrincipal(id), h.Delete)

		req, _ := http.NewRequest(http.MethodDelete, "/users/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}
