package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/centavo-ledger/internal/domain/user"
	"github.com/centavo-ledger/internal/platform/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown email and wrong password alike; the
// two cases must be indistinguishable on the wire.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	userRepo   user.Repository
	userTokens *token.UserTokenManager
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *slog.Logger, userRepo user.Repository, userTokens *token.UserTokenManager) AuthService {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		userTokens: userTokens,
		logger:     logger,
	}
}

// Login verifies credentials and mints an external token on success
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	accessToken, err := s.userTokens.Mint(u.ID, u.Email)
	if err != nil {
		s.logger.Error("Failed to mint access token", "error", err)
		return nil, "", err
	}

	return u, accessToken, nil
}

// ValidateUserToken checks an external token and returns its subject
func (s *AuthServiceImpl) ValidateUserToken(tokenString string) (uuid.UUID, bool) {
	claims, err := s.userTokens.Validate(tokenString)
	if err != nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
