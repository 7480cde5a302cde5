package quote

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
)

var ErrNotFound = errors.New("quote not found")

// ErrConflict is returned when a concurrent write changed the quote since the
// caller's snapshot was read. Retry with a fresh snapshot.
var ErrConflict = errors.New("quote modified concurrently")

// ErrLocked is returned when items or charges are edited after the quote has
// left draft.
var ErrLocked = errors.New("quote items are locked once sent")

// Status represents the persisted lifecycle state of a quote.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusViewed   Status = "viewed"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// TransitionError reports an illegal lifecycle transition. The quote is left
// in its prior state.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition quote from %s to %s", e.From, e.To)
}

// HistoryAction identifies an entry in a quote's audit trail.
type HistoryAction string

const (
	ActionCreated  HistoryAction = "created"
	ActionUpdated  HistoryAction = "updated"
	ActionSent     HistoryAction = "sent"
	ActionViewed   HistoryAction = "viewed"
	ActionAccepted HistoryAction = "accepted"
	ActionRejected HistoryAction = "rejected"
)

// History is a single recorded lifecycle event.
type History struct {
	ID          uuid.UUID
	QuoteID     uuid.UUID
	Action      HistoryAction
	Description string
	CreatedAt   time.Time
}

// Quote is a priced offer to a client. Items are orderable by SortOrder and
// mutable only while the quote is in draft; the stored totals are always
// recomputed from the items plus the document-level charges, never edited
// directly.
type Quote struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	Number         string
	Title          string
	Summary        string
	Status         Status
	ValidUntil     *time.Time
	Notes          string
	Terms          string
	Currency       string
	Items          []billing.LineItem
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	SentAt         *time.Time
	ViewedAt       *time.Time
	AcceptedAt     *time.Time
	RejectedAt     *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}

// EffectiveStatus is the status a reader should see right now. A quote whose
// validUntil has passed reads as expired even if the persisted status lags
// behind; accepted and rejected quotes never expire retroactively.
func (q *Quote) EffectiveStatus(now time.Time) Status {
	if q.expired(now) {
		return StatusExpired
	}

	return q.Status
}

func (q *Quote) expired(now time.Time) bool {
	switch q.Status {
	case StatusDraft, StatusSent, StatusViewed:
	default:
		return false
	}

	return q.ValidUntil != nil && dateOf(now).After(dateOf(*q.ValidUntil))
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Send marks a draft quote as sent and stamps sentAt.
func (q *Quote) Send(now time.Time) error {
	if q.Status != StatusDraft {
		return &TransitionError{From: q.Status, To: StatusSent}
	}

	q.Status = StatusSent
	q.SentAt = &now

	return nil
}

// MarkViewed records the client opening the quote. Re-viewing is a no-op and
// keeps the original viewedAt stamp.
func (q *Quote) MarkViewed(now time.Time) error {
	switch q.EffectiveStatus(now) {
	case StatusViewed:
		return nil
	case StatusSent:
	default:
		return &TransitionError{From: q.Status, To: StatusViewed}
	}

	q.Status = StatusViewed
	q.ViewedAt = &now

	return nil
}

// Accept moves a viewed quote to its accepted terminal state. An effectively
// expired quote cannot be accepted even if the persisted status lags.
func (q *Quote) Accept(now time.Time) error {
	if effective := q.EffectiveStatus(now); effective != StatusViewed {
		return &TransitionError{From: effective, To: StatusAccepted}
	}

	q.Status = StatusAccepted
	q.AcceptedAt = &now

	return nil
}

// Reject moves a viewed quote to its rejected terminal state.
func (q *Quote) Reject(now time.Time) error {
	if effective := q.EffectiveStatus(now); effective != StatusViewed {
		return &TransitionError{From: effective, To: StatusRejected}
	}

	q.Status = StatusRejected
	q.RejectedAt = &now

	return nil
}

// Expire persists the lazily-derived expired state. It only applies when the
// quote actually reads as expired.
func (q *Quote) Expire(now time.Time) error {
	if !q.expired(now) {
		return &TransitionError{From: q.Status, To: StatusExpired}
	}

	q.Status = StatusExpired

	return nil
}

// SetItems replaces the line items and recomputes totals. Items are frozen
// once the quote leaves draft.
func (q *Quote) SetItems(items []billing.LineItem) error {
	if q.Status != StatusDraft {
		return ErrLocked
	}

	cur, err := billing.ParseCurrency(q.Currency)
	if err != nil {
		return err
	}

	if err := billing.PriceItems(items, cur); err != nil {
		return err
	}

	q.Items = items

	return q.recompute(cur)
}

// SetCharges updates the document-level tax and discount and recomputes
// totals. Like items, charges are frozen once the quote leaves draft.
func (q *Quote) SetCharges(taxAmount, discountAmount decimal.Decimal) error {
	if q.Status != StatusDraft {
		return ErrLocked
	}

	cur, err := billing.ParseCurrency(q.Currency)
	if err != nil {
		return err
	}

	q.TaxAmount = taxAmount
	q.DiscountAmount = discountAmount

	return q.recompute(cur)
}

func (q *Quote) recompute(cur billing.Currency) error {
	totals, err := billing.DocumentTotals(q.Items, q.TaxAmount, q.DiscountAmount, cur)
	if err != nil {
		return err
	}

	q.Subtotal = totals.Subtotal
	q.TaxAmount = totals.TaxAmount
	q.DiscountAmount = totals.DiscountAmount
	q.TotalAmount = totals.Total

	return nil
}
