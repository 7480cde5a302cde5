package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/invoice"
)

type itemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	SortOrder   int             `json:"sort_order"`
}

type paymentResponse struct {
	ID            uuid.UUID             `json:"id"`
	Method        invoice.PaymentMethod `json:"method"`
	TransactionID string                `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency"`
	PaymentDate   time.Time             `json:"payment_date"`
	Notes         string                `json:"notes,omitempty"`
	Status        invoice.PaymentStatus `json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
}

type invoiceResponse struct {
	ID             uuid.UUID         `json:"id"`
	ClientID       uuid.UUID         `json:"client_id"`
	ProjectID      *uuid.UUID        `json:"project_id,omitempty"`
	QuoteID        *uuid.UUID        `json:"quote_id,omitempty"`
	Number         string            `json:"number"`
	Title          string            `json:"title"`
	Status         invoice.Status    `json:"status"`
	IssueDate      time.Time         `json:"issue_date"`
	DueDate        time.Time         `json:"due_date"`
	PaidDate       *time.Time        `json:"paid_date,omitempty"`
	DaysOverdue    int               `json:"days_overdue,omitempty"`
	PaymentTerms   string            `json:"payment_terms,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Terms          string            `json:"terms,omitempty"`
	Currency       string            `json:"currency"`
	Items          []itemResponse    `json:"items"`
	Payments       []paymentResponse `json:"payments"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	AmountPaid     decimal.Decimal   `json:"amount_paid"`
	BalanceDue     decimal.Decimal   `json:"balance_due"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	ViewedAt       *time.Time        `json:"viewed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      *time.Time        `json:"updated_at,omitempty"`
}

// paymentResult wraps a mutated invoice with any non-fatal warnings raised by
// the mutation, such as an overpayment.
type paymentResult struct {
	Invoice  invoiceResponse `json:"invoice"`
	Warnings []string        `json:"warnings,omitempty"`
}

// toResponse reports the effective status, so an invoice past its due date
// reads as overdue even before anything persists that state.
func toResponse(inv *invoice.Invoice, now time.Time) invoiceResponse {
	return invoiceResponse{
		ID:             inv.ID,
		ClientID:       inv.ClientID,
		ProjectID:      inv.ProjectID,
		QuoteID:        inv.QuoteID,
		Number:         inv.Number,
		Title:          inv.Title,
		Status:         inv.EffectiveStatus(now),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		PaidDate:       inv.PaidDate,
		DaysOverdue:    inv.DaysOverdue(now),
		PaymentTerms:   inv.PaymentTerms,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		Currency:       inv.Currency,
		Items:          toItemResponses(inv.Items),
		Payments:       toPaymentResponses(inv.Payments),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		TotalAmount:    inv.TotalAmount,
		AmountPaid:     inv.AmountPaid,
		BalanceDue:     inv.BalanceDue,
		SentAt:         inv.SentAt,
		ViewedAt:       inv.ViewedAt,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func toResponseList(invoices []*invoice.Invoice, now time.Time) []invoiceResponse {
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toResponse(inv, now)
	}

	return resp
}

func toItemResponses(items []billing.LineItem) []itemResponse {
	resp := make([]itemResponse, len(items))
	for i, item := range items {
		resp[i] = itemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Discount:    item.Discount,
			Total:       item.Total,
			SortOrder:   item.SortOrder,
		}
	}

	return resp
}

func toPaymentResponses(payments []invoice.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = paymentResponse{
			ID:            p.ID,
			Method:        p.Method,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
			Currency:      p.Currency,
			PaymentDate:   p.PaymentDate,
			Notes:         p.Notes,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt,
		}
	}

	return resp
}
