package service

import (
	"context"

	"github.com/centavo-ledger/internal/domain/user"
	"github.com/google/uuid"
)

// UserService defines the interface for user account management
type UserService interface {
	// Register creates a new user with a hashed password
	// Returns ErrEmailConflict if the email is already registered
	Register(ctx context.Context, email, firstName, lastName, password string) (*user.User, error)

	// GetByID retrieves a user by ID
	// Returns ErrUserNotFound if the user doesn't exist
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*user.User, error)

	// Update applies the provided non-nil fields to the user
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*user.User, error)

	// Delete removes the user
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserUpdate carries the optional fields of a PATCH request; nil means keep
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login verifies credentials and mints an external token
	// Returns ErrInvalidCredentials on unknown email or wrong password
	Login(ctx context.Context, email, password string) (*user.User, string, error)

	// ValidateUserToken checks an external token locally and returns the
	// subject when valid
	ValidateUserToken(tokenString string) (uuid.UUID, bool)
}
