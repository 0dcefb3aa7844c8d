package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity-owned credential record. PasswordHash is a bcrypt
// digest and must never be serialized; wire representations go through View.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View is the safe wire representation of a user. It has no digest field at
// all, so a password hash cannot leak through serialization.
type View struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View returns the wire representation of the user
func (u *User) View() View {
	return View{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUser creates a user record with a fresh identifier. The caller supplies
// the already-hashed password.
func NewUser(email, passwordHash, firstName, lastName string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
