package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
)

// OverpaymentWarning is a non-fatal condition: completed payments exceed the
// invoice total. The invoice is still marked paid; the caller decides how to
// surface the excess.
type OverpaymentWarning struct {
	InvoiceID uuid.UUID
	Excess    decimal.Decimal
}

func (w *OverpaymentWarning) String() string {
	return fmt.Sprintf("invoice %s overpaid by %s", w.InvoiceID, w.Excess)
}

// RecordPayment applies a payment against the invoice, recomputes amountPaid
// and balanceDue, and derives the resulting status. A payment with no
// explicit status counts as completed; a currency left empty inherits the
// invoice's. Draft and cancelled invoices accept no payments.
func (inv *Invoice) RecordPayment(p Payment, now time.Time) (*OverpaymentWarning, error) {
	switch inv.Status {
	case StatusDraft, StatusCancelled:
		return nil, &TransitionError{From: inv.Status, To: StatusPaid}
	}

	if !p.Amount.IsPositive() {
		return nil, &billing.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	if p.Currency == "" {
		p.Currency = inv.Currency
	}

	if p.Currency != inv.Currency {
		return nil, &billing.ValidationError{
			Field:  "currency",
			Reason: fmt.Sprintf("payment in %s against a %s invoice", p.Currency, inv.Currency),
		}
	}

	switch p.Status {
	case "":
		p.Status = PaymentCompleted
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
	default:
		return nil, &billing.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown payment status %q", p.Status)}
	}

	p.InvoiceID = inv.ID
	inv.Payments = append(inv.Payments, p)

	return inv.settle(now), nil
}

// VoidPayment reverses a previously recorded payment: a completed payment
// becomes refunded and its amount stops counting toward amountPaid, a pending
// one becomes failed. The ledger keeps the row for the audit trail.
func (inv *Invoice) VoidPayment(paymentID uuid.UUID, now time.Time) error {
	for i := range inv.Payments {
		if inv.Payments[i].ID != paymentID {
			continue
		}

		switch inv.Payments[i].Status {
		case PaymentCompleted:
			inv.Payments[i].Status = PaymentRefunded
		case PaymentPending:
			inv.Payments[i].Status = PaymentFailed
		}

		inv.settle(now)

		return nil
	}

	return ErrPaymentNotFound
}

// settle recomputes amountPaid and balanceDue from the payment collection and
// derives the invoice status. Only completed payments count. Draft and
// cancelled invoices get their amounts refreshed but never a derived status.
func (inv *Invoice) settle(now time.Time) *OverpaymentWarning {
	paid := decimal.Zero

	for _, p := range inv.Payments {
		if p.Status == PaymentCompleted {
			paid = paid.Add(p.Amount)
		}
	}

	inv.AmountPaid = paid
	inv.BalanceDue = inv.TotalAmount.Sub(paid)

	switch inv.Status {
	case StatusDraft, StatusCancelled:
		return nil
	}

	switch {
	case !inv.BalanceDue.IsPositive():
		inv.Status = StatusPaid

		if inv.PaidDate == nil {
			inv.PaidDate = &now
		}
	case inv.AmountPaid.IsPositive():
		inv.Status = StatusPartial
		inv.PaidDate = nil
	default:
		// All payments voided: fall back to the last explicit transition.
		if inv.Status == StatusPartial || inv.Status == StatusPaid {
			if inv.ViewedAt != nil {
				inv.Status = StatusViewed
			} else {
				inv.Status = StatusSent
			}
		}

		inv.PaidDate = nil
	}

	if inv.BalanceDue.IsNegative() {
		return &OverpaymentWarning{InvoiceID: inv.ID, Excess: inv.BalanceDue.Neg()}
	}

	return nil
}
