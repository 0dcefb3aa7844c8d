package service

import (
	"context"
	"fmt"
	"time"

	"github.com/centavo-ledger/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userRepo user.Repository
}

// NewUserService creates a new user service
func NewUserService(userRepo user.Repository) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
	}
}

// Register creates a new user, hashing the password with bcrypt. The unique
// index on email is the authority on duplicates; no pre-check read.
func (s *UserServiceImpl) Register(ctx context.Context, email, firstName, lastName, password string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.NewUser(email, string(hash), firstName, lastName)
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// GetByID retrieves a user by ID, returns ErrUserNotFound if not found
func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves all users
func (s *UserServiceImpl) List(ctx context.Context) ([]*user.User, error) {
	return s.userRepo.List(ctx)
}

// Update applies the non-nil fields of update to the stored user. A new
// password is re-hashed; a changed email can hit the unique index.
func (s *UserServiceImpl) Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Delete removes the user, returns ErrUserNotFound if not found
func (s *UserServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
