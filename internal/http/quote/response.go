package quote

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/quote"
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

type quoteResponse struct {
	ID             uuid.UUID       `json:"id"`
	ClientID       uuid.UUID       `json:"client_id"`
	ProjectID      *uuid.UUID      `json:"project_id,omitempty"`
	Number         string          `json:"number"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary,omitempty"`
	Status         quote.Status    `json:"status"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Terms          string          `json:"terms,omitempty"`
	Currency       string          `json:"currency"`
	Items          []itemResponse  `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	ViewedAt       *time.Time      `json:"viewed_at,omitempty"`
	AcceptedAt     *time.Time      `json:"accepted_at,omitempty"`
	RejectedAt     *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// toResponse reports the effective status, so an expired quote reads as
// expired even before anything persists that state.
func toResponse(q *quote.Quote, now time.Time) quoteResponse {
	return quoteResponse{
		ID:             q.ID,
		ClientID:       q.ClientID,
		ProjectID:      q.ProjectID,
		Number:         q.Number,
		Title:          q.Title,
		Summary:        q.Summary,
		Status:         q.EffectiveStatus(now),
		ValidUntil:     q.ValidUntil,
		Notes:          q.Notes,
		Terms:          q.Terms,
		Currency:       q.Currency,
		Items:          toItemResponses(q.Items),
		Subtotal:       q.Subtotal,
		TaxAmount:      q.TaxAmount,
		DiscountAmount: q.DiscountAmount,
		TotalAmount:    q.TotalAmount,
		SentAt:         q.SentAt,
		ViewedAt:       q.ViewedAt,
		AcceptedAt:     q.AcceptedAt,
		RejectedAt:     q.RejectedAt,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

func toResponseList(quotes []*quote.Quote, now time.Time) []quoteResponse {
	resp := make([]quoteResponse, len(quotes))
	for i, q := range quotes {
		resp[i] = toResponse(q, now)
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

type historyResponse struct {
	ID          uuid.UUID           `json:"id"`
	Action      quote.HistoryAction `json:"action"`
	Description string              `json:"description,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toHistoryList(entries []*quote.History) []historyResponse {
	resp := make([]historyResponse, len(entries))
	for i, h := range entries {
		resp[i] = historyResponse{
			ID:          h.ID,
			Action:      h.Action,
			Description: h.Description,
			CreatedAt:   h.CreatedAt,
		}
	}

	return resp
}
