package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines user persistence operations
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByEmail matches the email case-sensitively
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrEmailConflict indicates email uniqueness violation on registration
type ErrEmailConflict struct {
	Email string
}

func (e ErrEmailConflict) Error() string {
	return "user with email already exists: " + e.Email
}

// Is implements the errors.Is interface for ErrEmailConflict
func (e ErrEmailConflict) Is(target error) bool {
	t, ok := target.(ErrEmailConflict)
	if !ok {
		return false
	}
	if t.Email == "" {
		return true
	}
	return e.Email == t.Email
}

// ErrUserNotFound indicates missing user
type ErrUserNotFound struct {
	ID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrUserNotFound
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
