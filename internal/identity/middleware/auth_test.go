package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/platform/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userTokens := token.NewUserTokenManager("external-secret", time.Hour)

	newRouter := func() (*gin.Engine, *uuid.UUID) {
		var principal uuid.UUID
		router := gin.New()
		router.GET("/guarded", RequireUser(userTokens), func(c *gin.Context) {
			id, ok := httpapi.GetPrincipal(c)
			require.True(t, ok)
			principal = id
			c.Status(http.StatusOK)
		})
		return router, &principal
	}

	t.Run("ValidToken", func(t *testing.T) {
		router, principal := newRouter()
		userID := uuid.New()
		signed, err := userTokens.Mint(userID, "alice@x")
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID, *principal)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		router, _ := newRouter()
		req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
	})

	t.Run("NotBearer", func(t *testing.T) {
		router, _ := newRouter()
		req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		router, _ := newRouter()
		other := token.NewUserTokenManager("different-secret", time.Hour)
		signed, err := other.Mint(uuid.New(), "alice@x")
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		router, _ := newRouter()
		expired := token.NewUserTokenManager("external-secret", -time.Minute)
		signed, err := expired.Mint(uuid.New(), "alice@x")
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serviceTokens := token.NewServiceTokenManager("internal-secret", time.Minute)

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.POST("/internal", RequireService(serviceTokens), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("ValidInternalToken", func(t *testing.T) {
		router := newRouter()
		signed, err := serviceTokens.Mint()
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodPost, "/internal", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		router := newRouter()
		req, _ := http.NewRequest(http.MethodPost, "/internal", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("UserTokenRejected", func(t *testing.T) {
		// An external user token must not open the internal endpoint even if
		// both managers shared a secret.
		userTokens := token.NewUserTokenManager("internal-secret", time.Hour)
		signed, err := userTokens.Mint(uuid.New(), "alice@x")
		require.NoError(t, err)

		router := newRouter()
		req, _ := http.NewRequest(http.MethodPost, "/internal", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
