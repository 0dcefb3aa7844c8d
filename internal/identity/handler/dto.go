package handler

import "github.com/centavo-ledger/internal/domain/user"

// RegisterRequest represents a request to register a new user
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=2"`
	LastName  string `json:"last_name" binding:"required,min=2"`
	Password  string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the authenticated user and their access token
type LoginResponse struct {
	User        user.View `json:"user"`
	AccessToken string    `json:"access_token"`
}

// UpdateUserRequest represents a partial update; absent fields keep their value
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,min=2"`
	LastName  *string `json:"last_name" binding:"omitempty,min=2"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
}

// ValidateTokenRequest is the internal token validation payload
type ValidateTokenRequest struct {
	UserToken string `json:"user_token" binding:"required"`
}

// ValidateTokenResponse reports the validation verdict. UserID is only set
// when Valid is true.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
}
