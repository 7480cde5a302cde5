package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("project not found")

var ErrConflict = errors.New("project modified concurrently")

// Status is the project's delivery state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on_hold"
	StatusCancelled Status = "cancelled"
)

// Project is a body of work for a client that quotes and invoices can
// reference.
type Project struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ClientID    uuid.UUID
	Name        string
	Description string
	Status      Status
	HourlyRate  *decimal.Decimal
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}
