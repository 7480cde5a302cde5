package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

var ErrEmailTaken = errors.New("email already registered")

var ErrInvalidCredentials = errors.New("invalid email or password")

// User is an account owning clients, projects, quotes and invoices.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	BusinessName string
	Currency     string // default currency for new documents
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
