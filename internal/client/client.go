package client

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("client not found")

var ErrConflict = errors.New("client modified concurrently")

// Status marks whether the client is an active relationship or archived.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Category is an optional relationship label set by the owner.
type Category string

const (
	CategoryRecurring Category = "recurring"
	CategoryOneTime   Category = "one-time"
	CategoryProspect  Category = "prospect"
	CategoryHighValue Category = "high-value"
	CategoryLowValue  Category = "low-value"
)

// Client is a company or person the freelancer bills. Financial summary
// fields (outstanding balance, paid totals) are never stored here; they are
// derived from the client's invoices at query time.
type Client struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Address     string
	City        string
	State       string
	Country     string
	PostalCode  string
	TaxNumber   string
	Notes       string
	Status      Status
	Category    Category
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// DisplayName prefers the company name, falling back to the contact.
func (c *Client) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}

	return c.ContactName
}
