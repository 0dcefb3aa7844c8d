// Package identityclient is the ledger's HTTP client for the identity
// service's token validation endpoint.
package identityclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/centavo-ledger/internal/platform/token"
	"github.com/google/uuid"
)

const validatePath = "/api/v1/auth/validate-user-jwt"

// Client calls identity to validate external user tokens. Every call mints a
// fresh internal token so the short internal TTL never races a cached one.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	serviceTokens *token.ServiceTokenManager
	logger        *slog.Logger
}

// NewClient creates a validation client for the identity service at baseURL
func NewClient(baseURL string, timeout time.Duration, serviceTokens *token.ServiceTokenManager, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: timeout},
		serviceTokens: serviceTokens,
		logger:        logger,
	}
}

type validateRequest struct {
	UserToken string `json:"user_token"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
}

// ValidateUserToken asks identity whether userToken is valid. Network
// failures, non-200 statuses and malformed responses all report invalid; the
// caller maps that to 401.
func (c *Client) ValidateUserToken(ctx context.Context, userToken string) (uuid.UUID, bool) {
	internalToken, err := c.serviceTokens.Mint()
	if err != nil {
		c.logger.Error("Failed to mint internal token", "error", err)
		return uuid.Nil, false
	}

	body, err := json.Marshal(validateRequest{UserToken: userToken})
	if err != nil {
		c.logger.Error("Failed to marshal validation request", "error", err)
		return uuid.Nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+validatePath, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Failed to build validation request", "error", err)
		return uuid.Nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", internalToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Identity validation call failed", "error", err)
		return uuid.Nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Identity rejected validation call", "status", resp.StatusCode)
		return uuid.Nil, false
	}

	var decoded validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Warn("Failed to decode validation response", "error", err)
		return uuid.Nil, false
	}
	if !decoded.Valid {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(decoded.UserID)
	if err != nil {
		c.logger.Warn("Identity returned malformed user id", "user_id", decoded.UserID)
		return uuid.Nil, false
	}

	return userID, true
}
