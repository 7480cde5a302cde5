package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/client"
)

type clientResponse struct {
	ID          uuid.UUID       `json:"id"`
	CompanyName string          `json:"company_name,omitempty"`
	ContactName string          `json:"contact_name,omitempty"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	Country     string          `json:"country,omitempty"`
	PostalCode  string          `json:"postal_code,omitempty"`
	TaxNumber   string          `json:"tax_number,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      client.Status   `json:"status"`
	Category    client.Category `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		DisplayName: c.DisplayName(),
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Country:     c.Country,
		PostalCode:  c.PostalCode,
		TaxNumber:   c.TaxNumber,
		Notes:       c.Notes,
		Status:      c.Status,
		Category:    c.Category,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toResponseList(clients []*client.Client) []clientResponse {
	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toResponse(c)
	}

	return resp
}
