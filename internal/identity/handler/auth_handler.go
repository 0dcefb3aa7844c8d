package handler

import (
	"errors"
	"log/slog"

	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/identity/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles login and internal token validation
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(logger *slog.Logger, authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login verifies credentials and returns the user with an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, accessToken, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpapi.RespondUnauthorized(c, "Invalid email or password")
			return
		}
		h.logger.Error("Failed to log in user", "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondOK(c, LoginResponse{
		User:        u.View(),
		AccessToken: accessToken,
	})
}

// ValidateUserJWT answers the ledger's token validation calls. An invalid
// user token is a 200 with valid=false; only a missing internal token is 401,
// and that is enforced by the route guard before this handler runs.
func (h *AuthHandler) ValidateUserJWT(c *gin.Context) {
	var req ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, valid := h.authService.ValidateUserToken(req.UserToken)
	if !valid {
		httpapi.RespondOK(c, ValidateTokenResponse{Valid: false})
		return
	}

	httpapi.RespondOK(c, ValidateTokenResponse{
		Valid:  true,
		UserID: userID.String(),
	})
}
