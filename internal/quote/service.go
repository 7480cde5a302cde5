package quote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/docnum"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=quote
type Repository interface {
	CreateQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, userID, id uuid.UUID) (*Quote, error)
	ListQuotes(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Quote, error)
	// UpdateQuote persists the snapshot guarded by its Version and bumps it.
	// Returns ErrConflict when another write got there first.
	UpdateQuote(ctx context.Context, q *Quote) error
	DeleteQuote(ctx context.Context, userID, id uuid.UUID) error

	NextNumber(ctx context.Context, userID uuid.UUID, year int) (int64, error)

	AddHistory(ctx context.Context, h *History) error
	ListHistory(ctx context.Context, userID, quoteID uuid.UUID) ([]*History, error)
}

type ListFilter struct {
	Status    *Status
	ClientID  *uuid.UUID
	ProjectID *uuid.UUID
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the service clock, used by tests for deterministic
// lifecycle timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type ItemParams struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Discount    decimal.Decimal
}

type CreateParams struct {
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	Title          string
	Summary        string
	ValidUntil     *time.Time
	Notes          string
	Terms          string
	Currency       string
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Items          []ItemParams
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Quote, error) {
	if params.Title == "" {
		return nil, &billing.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if params.Currency == "" {
		params.Currency = "USD"
	}

	if _, err := billing.ParseCurrency(params.Currency); err != nil {
		return nil, err
	}

	now := s.now()

	seq, err := s.repo.NextNumber(ctx, userID, now.Year())
	if err != nil {
		return nil, fmt.Errorf("allocating quote number: %w", err)
	}

	q := &Quote{
		UserID:     userID,
		ClientID:   params.ClientID,
		ProjectID:  params.ProjectID,
		Number:     docnum.Format(docnum.PrefixQuote, now.Year(), seq),
		Title:      params.Title,
		Summary:    params.Summary,
		Status:     StatusDraft,
		ValidUntil: params.ValidUntil,
		Notes:      params.Notes,
		Terms:      params.Terms,
		Currency:   params.Currency,
	}

	if err := q.SetItems(itemsFromParams(params.Items)); err != nil {
		return nil, err
	}

	if err := q.SetCharges(params.TaxAmount, params.DiscountAmount); err != nil {
		return nil, err
	}

	if err := s.repo.CreateQuote(ctx, q); err != nil {
		return nil, err
	}

	s.record(ctx, q, ActionCreated, "Quote created")

	return q, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Quote, error) {
	return s.repo.GetQuote(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Quote, error) {
	return s.repo.ListQuotes(ctx, userID, filter)
}

type UpdateParams struct {
	Title          *string
	Summary        *string
	ValidUntil     *time.Time
	Notes          *string
	Terms          *string
	TaxAmount      *decimal.Decimal
	DiscountAmount *decimal.Decimal
	Items          []ItemParams // nil leaves items untouched
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Quote, error) {
	q, err := s.repo.GetQuote(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		q.Title = *params.Title
	}

	if params.Summary != nil {
		q.Summary = *params.Summary
	}

	if params.ValidUntil != nil {
		q.ValidUntil = params.ValidUntil
	}

	if params.Notes != nil {
		q.Notes = *params.Notes
	}

	if params.Terms != nil {
		q.Terms = *params.Terms
	}

	if params.Items != nil {
		if err := q.SetItems(itemsFromParams(params.Items)); err != nil {
			return nil, err
		}
	}

	if params.TaxAmount != nil || params.DiscountAmount != nil {
		tax := q.TaxAmount
		if params.TaxAmount != nil {
			tax = *params.TaxAmount
		}

		discount := q.DiscountAmount
		if params.DiscountAmount != nil {
			discount = *params.DiscountAmount
		}

		if err := q.SetCharges(tax, discount); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateQuote(ctx, q); err != nil {
		return nil, err
	}

	s.record(ctx, q, ActionUpdated, "Quote updated")

	return q, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	q, err := s.repo.GetQuote(ctx, userID, id)
	if err != nil {
		return err
	}

	if q.Status != StatusDraft {
		return ErrLocked
	}

	return s.repo.DeleteQuote(ctx, userID, id)
}

func (s *Service) Send(ctx context.Context, userID, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, userID, id, ActionSent, "Quote sent to client", (*Quote).Send)
}

func (s *Service) MarkViewed(ctx context.Context, userID, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, userID, id, ActionViewed, "Quote viewed by client", (*Quote).MarkViewed)
}

func (s *Service) Accept(ctx context.Context, userID, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, userID, id, ActionAccepted, "Quote accepted by client", (*Quote).Accept)
}

func (s *Service) Reject(ctx context.Context, userID, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, userID, id, ActionRejected, "Quote rejected by client", (*Quote).Reject)
}

func (s *Service) History(ctx context.Context, userID, quoteID uuid.UUID) ([]*History, error) {
	return s.repo.ListHistory(ctx, userID, quoteID)
}

func (s *Service) transition(ctx context.Context, userID, id uuid.UUID, action HistoryAction, note string, apply func(*Quote, time.Time) error) (*Quote, error) {
	q, err := s.repo.GetQuote(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := apply(q, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateQuote(ctx, q); err != nil {
		return nil, err
	}

	s.record(ctx, q, action, note)

	return q, nil
}

// record appends to the audit trail; a history write failing never fails the
// transition itself.
func (s *Service) record(ctx context.Context, q *Quote, action HistoryAction, note string) {
	h := &History{
		QuoteID:     q.ID,
		Action:      action,
		Description: note,
	}

	if err := s.repo.AddHistory(ctx, h); err != nil {
		slog.Warn("failed to record quote history", "quote_id", q.ID, "action", action, "error", err)
	}
}

func itemsFromParams(params []ItemParams) []billing.LineItem {
	items := make([]billing.LineItem, len(params))
	for i, p := range params {
		items[i] = billing.LineItem{
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			TaxRate:     p.TaxRate,
			Discount:    p.Discount,
		}
	}

	return items
}
