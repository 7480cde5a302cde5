package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
)

var ErrNotFound = errors.New("invoice not found")

var ErrPaymentNotFound = errors.New("payment not found")

// ErrConflict is returned when a concurrent write changed the invoice since
// the caller's snapshot was read. Retry with a fresh snapshot.
var ErrConflict = errors.New("invoice modified concurrently")

// ErrLocked is returned when items or charges are edited after the invoice
// has left draft. Metadata such as notes stays editable.
var ErrLocked = errors.New("invoice items are locked once sent")

// Status represents the persisted lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// TransitionError reports an illegal lifecycle transition. The invoice is
// left in its prior state.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition invoice from %s to %s", e.From, e.To)
}

// PaymentStatus is the settlement state of a single payment. Only completed
// payments count toward an invoice's amountPaid.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod is how the client paid.
type PaymentMethod string

const (
	MethodStripe       PaymentMethod = "stripe"
	MethodPaypal       PaymentMethod = "paypal"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodOther        PaymentMethod = "other"
)

// Payment belongs to exactly one invoice; payments are never shared or moved
// between invoices.
type Payment struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	Method        PaymentMethod
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	PaymentDate   time.Time
	Notes         string
	Status        PaymentStatus
	CreatedAt     time.Time
}

// Invoice is a bill issued to a client. AmountPaid and BalanceDue are derived
// from the payment collection after every mutation and never set directly.
type Invoice struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	QuoteID        *uuid.UUID
	Number         string
	Title          string
	Status         Status
	IssueDate      time.Time
	DueDate        time.Time
	PaidDate       *time.Time
	PaymentTerms   string
	Notes          string
	Terms          string
	Currency       string
	Items          []billing.LineItem
	Payments       []Payment
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	BalanceDue     decimal.Decimal
	SentAt         *time.Time
	ViewedAt       *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}

// EffectiveStatus is the status a reader should see right now. An unpaid
// invoice past its due date reads as overdue even if the persisted status
// lags behind; draft, paid and cancelled invoices never do.
func (inv *Invoice) EffectiveStatus(now time.Time) Status {
	if inv.Overdue(now) {
		return StatusOverdue
	}

	return inv.Status
}

// Overdue reports whether the invoice is effectively overdue, using
// calendar-day granularity.
func (inv *Invoice) Overdue(now time.Time) bool {
	switch inv.Status {
	case StatusSent, StatusViewed, StatusPartial, StatusOverdue:
	default:
		return false
	}

	return dateOf(now).After(dateOf(inv.DueDate))
}

// DaysOverdue returns how many whole calendar days the invoice is past due,
// zero when it is current.
func (inv *Invoice) DaysOverdue(now time.Time) int {
	days := int(dateOf(now).Sub(dateOf(inv.DueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}

	return days
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Outstanding reports whether the invoice still carries a collectible
// balance: not cancelled, not draft, not fully paid.
func (inv *Invoice) Outstanding() bool {
	switch inv.Status {
	case StatusCancelled, StatusDraft:
		return false
	}

	return inv.BalanceDue.IsPositive()
}

// Send marks a draft invoice as sent and stamps sentAt.
func (inv *Invoice) Send(now time.Time) error {
	if inv.Status != StatusDraft {
		return &TransitionError{From: inv.Status, To: StatusSent}
	}

	inv.Status = StatusSent
	inv.SentAt = &now

	return nil
}

// MarkViewed records the client opening the invoice. Re-viewing is a no-op
// and keeps the original viewedAt stamp. Viewing a persisted-overdue invoice
// stamps viewedAt without touching the status.
func (inv *Invoice) MarkViewed(now time.Time) error {
	switch inv.Status {
	case StatusViewed:
		return nil
	case StatusOverdue:
		if inv.ViewedAt == nil {
			inv.ViewedAt = &now
		}

		return nil
	case StatusSent:
	default:
		return &TransitionError{From: inv.Status, To: StatusViewed}
	}

	inv.Status = StatusViewed
	inv.ViewedAt = &now

	return nil
}

// Cancel voids the invoice. Reachable from any non-terminal state; paid and
// cancelled invoices cannot be cancelled.
func (inv *Invoice) Cancel() error {
	switch inv.Status {
	case StatusPaid, StatusCancelled:
		return &TransitionError{From: inv.Status, To: StatusCancelled}
	}

	inv.Status = StatusCancelled

	return nil
}

// MarkOverdue persists the lazily-derived overdue state. It only applies
// when the invoice actually reads as overdue.
func (inv *Invoice) MarkOverdue(now time.Time) error {
	if !inv.Overdue(now) {
		return &TransitionError{From: inv.Status, To: StatusOverdue}
	}

	inv.Status = StatusOverdue

	return nil
}

// SetItems replaces the line items and recomputes totals and balance. Items
// are frozen once the invoice leaves draft.
func (inv *Invoice) SetItems(items []billing.LineItem) error {
	if inv.Status != StatusDraft {
		return ErrLocked
	}

	cur, err := billing.ParseCurrency(inv.Currency)
	if err != nil {
		return err
	}

	if err := billing.PriceItems(items, cur); err != nil {
		return err
	}

	inv.Items = items

	return inv.recompute()
}

// SetCharges updates the document-level tax and discount. Frozen once the
// invoice leaves draft.
func (inv *Invoice) SetCharges(taxAmount, discountAmount decimal.Decimal) error {
	if inv.Status != StatusDraft {
		return ErrLocked
	}

	inv.TaxAmount = taxAmount
	inv.DiscountAmount = discountAmount

	return inv.recompute()
}

func (inv *Invoice) recompute() error {
	cur, err := billing.ParseCurrency(inv.Currency)
	if err != nil {
		return err
	}

	totals, err := billing.DocumentTotals(inv.Items, inv.TaxAmount, inv.DiscountAmount, cur)
	if err != nil {
		return err
	}

	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.DiscountAmount = totals.DiscountAmount
	inv.TotalAmount = totals.Total
	inv.settle(time.Time{})

	return nil
}
