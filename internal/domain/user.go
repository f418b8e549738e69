package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles. The first registered user is promoted to admin; everyone
// after that gets RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. PasswordHash is a bcrypt digest;
// the plaintext password is never stored.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
