// Package token implements the two HS256 bearer token contracts: external
// user tokens minted by identity at login, and short-lived internal tokens
// the ledger presents to identity's validate endpoint.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers bad signatures, expiry and malformed claims.
	// Callers must not distinguish further on the wire.
	ErrInvalidToken = errors.New("invalid token")
)

// UserClaims is the validated payload of an external token
type UserClaims struct {
	UserID uuid.UUID
	Email  string
}

// UserTokenManager mints and validates external user tokens
type UserTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewUserTokenManager(secret string, ttl time.Duration) *UserTokenManager {
	return &UserTokenManager{secret: []byte(secret), ttl: ttl}
}

// Mint signs a token with claims {sub, email, iat, exp}
func (m *UserTokenManager) Mint(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign user token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and requires sub and email claims
func (m *UserTokenManager) Validate(tokenString string) (*UserClaims, error) {
	claims, err := parseHS256(tokenString, m.secret)
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &UserClaims{UserID: userID, Email: email}, nil
}

// ServiceTokenManager mints and validates internal peer-service tokens,
// keyed on a secret distinct from the user token secret
type ServiceTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewServiceTokenManager(secret string, ttl time.Duration) *ServiceTokenManager {
	return &ServiceTokenManager{secret: []byte(secret), ttl: ttl}
}

// Mint signs a token with claims {internal: true, iat, exp}
func (m *ServiceTokenManager) Mint() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"internal": true,
		"iat":      now.Unix(),
		"exp":      now.Add(m.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, expiry and the internal flag
func (m *ServiceTokenManager) Validate(tokenString string) error {
	claims, err := parseHS256(tokenString, m.secret)
	if err != nil {
		return err
	}

	if internal, _ := claims["internal"].(bool); !internal {
		return ErrInvalidToken
	}
	return nil
}

// parseHS256 rejects any signing method other than HS256; expiry is enforced
// by the parser itself
func parseHS256(tokenString string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
