package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/billing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, userID, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, userID, id uuid.UUID) error
}

type ListFilter struct {
	Status   *Status
	Category *Category
	Search   string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
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
	Category    Category
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Client, error) {
	if params.CompanyName == "" && params.ContactName == "" {
		return nil, &billing.ValidationError{Field: "contactName", Reason: "company or contact name required"}
	}

	c := &Client{
		UserID:      userID,
		CompanyName: params.CompanyName,
		ContactName: params.ContactName,
		Email:       params.Email,
		Phone:       params.Phone,
		Address:     params.Address,
		City:        params.City,
		State:       params.State,
		Country:     params.Country,
		PostalCode:  params.PostalCode,
		TaxNumber:   params.TaxNumber,
		Notes:       params.Notes,
		Status:      StatusActive,
		Category:    params.Category,
	}

	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Client, error) {
	return s.repo.ListClients(ctx, userID, filter)
}

type UpdateParams struct {
	CompanyName *string
	ContactName *string
	Email       *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	Country     *string
	PostalCode  *string
	TaxNumber   *string
	Notes       *string
	Status      *Status
	Category    *Category
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Client, error) {
	c, err := s.repo.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	apply(&c.CompanyName, params.CompanyName)
	apply(&c.ContactName, params.ContactName)
	apply(&c.Email, params.Email)
	apply(&c.Phone, params.Phone)
	apply(&c.Address, params.Address)
	apply(&c.City, params.City)
	apply(&c.State, params.State)
	apply(&c.Country, params.Country)
	apply(&c.PostalCode, params.PostalCode)
	apply(&c.TaxNumber, params.TaxNumber)
	apply(&c.Notes, params.Notes)

	if params.Status != nil {
		c.Status = *params.Status
	}

	if params.Category != nil {
		c.Category = *params.Category
	}

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Archive keeps the client's history but takes them out of active lists.
func (s *Service) Archive(ctx context.Context, userID, id uuid.UUID) (*Client, error) {
	archived := StatusArchived
	return s.Update(ctx, userID, id, UpdateParams{Status: &archived})
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, userID, id)
}
