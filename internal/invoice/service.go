package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/docnum"
	"github.com/pcruz7/lancer/internal/quote"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Invoice, error)
	// UpdateInvoice persists the snapshot (items and payments included)
	// guarded by its Version and bumps it. Returns ErrConflict when another
	// write got there first.
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error

	NextNumber(ctx context.Context, userID uuid.UUID, year int) (int64, error)
}

type ListFilter struct {
	Status    *Status
	ClientID  *uuid.UUID
	ProjectID *uuid.UUID
	DueBefore *time.Time
	DueAfter  *time.Time
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the service clock, used by tests for deterministic
// due-date and lifecycle timestamps.
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
	QuoteID        *uuid.UUID
	Title          string
	IssueDate      time.Time
	DueDate        time.Time
	PaymentTerms   string
	Notes          string
	Terms          string
	Currency       string
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Items          []ItemParams
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Invoice, error) {
	if params.Title == "" {
		return nil, &billing.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if params.DueDate.Before(params.IssueDate) {
		return nil, &billing.ValidationError{Field: "dueDate", Reason: "must not precede the issue date"}
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
		return nil, fmt.Errorf("allocating invoice number: %w", err)
	}

	inv := &Invoice{
		UserID:       userID,
		ClientID:     params.ClientID,
		ProjectID:    params.ProjectID,
		QuoteID:      params.QuoteID,
		Number:       docnum.Format(docnum.PrefixInvoice, now.Year(), seq),
		Title:        params.Title,
		Status:       StatusDraft,
		IssueDate:    params.IssueDate,
		DueDate:      params.DueDate,
		PaymentTerms: params.PaymentTerms,
		Notes:        params.Notes,
		Terms:        params.Terms,
		Currency:     params.Currency,
	}

	if err := inv.SetItems(itemsFromParams(params.Items)); err != nil {
		return nil, err
	}

	if err := inv.SetCharges(params.TaxAmount, params.DiscountAmount); err != nil {
		return nil, err
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// CreateFromQuote drafts an invoice carrying over an accepted quote's client,
// items, charges and currency.
func (s *Service) CreateFromQuote(ctx context.Context, userID uuid.UUID, q *quote.Quote, issueDate, dueDate time.Time) (*Invoice, error) {
	if q.Status != quote.StatusAccepted {
		return nil, &billing.ValidationError{Field: "quote", Reason: "only accepted quotes can be invoiced"}
	}

	items := make([]ItemParams, len(q.Items))
	for i, item := range q.Items {
		items[i] = ItemParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Discount:    item.Discount,
		}
	}

	return s.Create(ctx, userID, CreateParams{
		ClientID:       q.ClientID,
		ProjectID:      q.ProjectID,
		QuoteID:        &q.ID,
		Title:          q.Title,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		Notes:          q.Notes,
		Terms:          q.Terms,
		Currency:       q.Currency,
		TaxAmount:      q.TaxAmount,
		DiscountAmount: q.DiscountAmount,
		Items:          items,
	})
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, userID, filter)
}

// ListOverdue returns invoices that are effectively overdue right now,
// regardless of their persisted status.
func (s *Service) ListOverdue(ctx context.Context, userID uuid.UUID) ([]*Invoice, error) {
	all, err := s.repo.ListInvoices(ctx, userID, ListFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()

	overdue := all[:0:0]
	for _, inv := range all {
		if inv.Overdue(now) {
			overdue = append(overdue, inv)
		}
	}

	return overdue, nil
}

type UpdateParams struct {
	Title          *string
	IssueDate      *time.Time
	DueDate        *time.Time
	PaymentTerms   *string
	Notes          *string
	Terms          *string
	TaxAmount      *decimal.Decimal
	DiscountAmount *decimal.Decimal
	Items          []ItemParams // nil leaves items untouched
}

// Update edits an invoice. Metadata (notes, terms) is editable in any state;
// items, charges and dates only while the invoice is in draft.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Notes != nil {
		inv.Notes = *params.Notes
	}

	if params.Terms != nil {
		inv.Terms = *params.Terms
	}

	if params.PaymentTerms != nil {
		inv.PaymentTerms = *params.PaymentTerms
	}

	structural := params.Title != nil || params.IssueDate != nil || params.DueDate != nil
	if structural && inv.Status != StatusDraft {
		return nil, ErrLocked
	}

	if params.Title != nil {
		inv.Title = *params.Title
	}

	if params.IssueDate != nil {
		inv.IssueDate = *params.IssueDate
	}

	if params.DueDate != nil {
		inv.DueDate = *params.DueDate
	}

	if params.Items != nil {
		if err := inv.SetItems(itemsFromParams(params.Items)); err != nil {
			return nil, err
		}
	}

	if params.TaxAmount != nil || params.DiscountAmount != nil {
		tax := inv.TaxAmount
		if params.TaxAmount != nil {
			tax = *params.TaxAmount
		}

		discount := inv.DiscountAmount
		if params.DiscountAmount != nil {
			discount = *params.DiscountAmount
		}

		if err := inv.SetCharges(tax, discount); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return err
	}

	if inv.Status != StatusDraft {
		return ErrLocked
	}

	return s.repo.DeleteInvoice(ctx, userID, id)
}

func (s *Service) Send(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, userID, id, (*Invoice).Send)
}

func (s *Service) MarkViewed(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, userID, id, (*Invoice).MarkViewed)
}

func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, userID, id, func(inv *Invoice, _ time.Time) error {
		return inv.Cancel()
	})
}

func (s *Service) MarkOverdue(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, userID, id, (*Invoice).MarkOverdue)
}

type PaymentParams struct {
	Method        PaymentMethod
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	PaymentDate   time.Time
	Notes         string
	Status        PaymentStatus
}

// RecordPayment applies a payment against the invoice snapshot and persists
// the result. The returned warning, when non-nil, flags an overpayment the
// caller should surface; the mutation still commits.
func (s *Service) RecordPayment(ctx context.Context, userID, id uuid.UUID, params PaymentParams) (*Invoice, *OverpaymentWarning, error) {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()

	paymentDate := params.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	warn, err := inv.RecordPayment(Payment{
		ID:            uuid.New(),
		Method:        params.Method,
		TransactionID: params.TransactionID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		PaymentDate:   paymentDate,
		Notes:         params.Notes,
		Status:        params.Status,
	}, now)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, nil, err
	}

	return inv, warn, nil
}

func (s *Service) VoidPayment(ctx context.Context, userID, id, paymentID uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := inv.VoidPayment(paymentID, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) transition(ctx context.Context, userID, id uuid.UUID, apply func(*Invoice, time.Time) error) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := apply(inv, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
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
