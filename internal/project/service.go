package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, userID, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, userID, id uuid.UUID) error
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID    uuid.UUID
	Name        string
	Description string
	HourlyRate  *decimal.Decimal
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Project, error) {
	if params.Name == "" {
		return nil, &billing.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if params.HourlyRate != nil && params.HourlyRate.IsNegative() {
		return nil, &billing.ValidationError{Field: "hourlyRate", Reason: "must not be negative"}
	}

	p := &Project{
		UserID:      userID,
		ClientID:    params.ClientID,
		Name:        params.Name,
		Description: params.Description,
		Status:      StatusActive,
		HourlyRate:  params.HourlyRate,
		Budget:      params.Budget,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Project, error) {
	return s.repo.ListProjects(ctx, userID, filter)
}

type UpdateParams struct {
	Name        *string
	Description *string
	Status      *Status
	HourlyRate  *decimal.Decimal
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Project, error) {
	p, err := s.repo.GetProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		p.Name = *params.Name
	}

	if params.Description != nil {
		p.Description = *params.Description
	}

	if params.Status != nil {
		p.Status = *params.Status
	}

	if params.HourlyRate != nil {
		p.HourlyRate = params.HourlyRate
	}

	if params.Budget != nil {
		p.Budget = params.Budget
	}

	if params.StartDate != nil {
		p.StartDate = params.StartDate
	}

	if params.EndDate != nil {
		p.EndDate = params.EndDate
	}

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteProject(ctx, userID, id)
}
