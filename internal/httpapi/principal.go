package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrincipalKey is the gin context key holding the authenticated user ID
const PrincipalKey = "principal_user_id"

// SetPrincipal stores the authenticated user ID on the request context
func SetPrincipal(c *gin.Context, userID uuid.UUID) {
	c.Set(PrincipalKey, userID)
}

// GetPrincipal retrieves the authenticated user ID set by an auth middleware.
// The second return is false when no guard ran on this route.
func GetPrincipal(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}
