// Package middleware holds the ledger's route guard. Unlike identity, the
// ledger never validates user tokens itself; every request is mediated by a
// remote call to identity.
package middleware

import (
	"context"
	"strings"

	"github.com/centavo-ledger/internal/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenValidator abstracts the identity client for testing
type TokenValidator interface {
	ValidateUserToken(ctx context.Context, userToken string) (uuid.UUID, bool)
}

// RequireUser guards routes by validating the bearer token against identity.
// Validation failure of any kind, including identity being unreachable, is a
// plain 401.
func RequireUser(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if header == "" || len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httpapi.RespondUnauthorized(c, "Missing bearer token")
			c.Abort()
			return
		}

		userID, ok := validator.ValidateUserToken(c.Request.Context(), parts[1])
		if !ok {
			httpapi.RespondUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		httpapi.SetPrincipal(c, userID)
		c.Next()
	}
}
