// Package middleware holds identity's route guards. User endpoints validate
// the external token locally; the validate-user-jwt endpoint requires the
// internal peer token instead.
package middleware

import (
	"strings"

	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/platform/token"
	"github.com/gin-gonic/gin"
)

// bearerToken extracts the credential from an Authorization: Bearer header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireUser guards routes with the external user token and stores the
// subject as the request principal
func RequireUser(userTokens *token.UserTokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			httpapi.RespondUnauthorized(c, "Missing bearer token")
			c.Abort()
			return
		}

		claims, err := userTokens.Validate(tokenString)
		if err != nil {
			httpapi.RespondUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		httpapi.SetPrincipal(c, claims.UserID)
		c.Next()
	}
}

// RequireService guards the internal validation endpoint with the peer token
func RequireService(serviceTokens *token.ServiceTokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			httpapi.RespondUnauthorized(c, "Missing bearer token")
			c.Abort()
			return
		}

		if err := serviceTokens.Validate(tokenString); err != nil {
			httpapi.RespondUnauthorized(c, "Invalid internal token")
			c.Abort()
			return
		}

		c.Next()
	}
}
