package quote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/auth"
	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/quote"
)

type Handler struct {
	svc *quote.Service
}

func NewHandler(svc *quote.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/send", h.transition(h.svc.Send))
	r.Post("/{id}/view", h.transition(h.svc.MarkViewed))
	r.Post("/{id}/accept", h.transition(h.svc.Accept))
	r.Post("/{id}/reject", h.transition(h.svc.Reject))
	r.Get("/{id}/history", h.history)
}

type itemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
}

type createQuoteRequest struct {
	ClientID       uuid.UUID       `json:"client_id"`
	ProjectID      *uuid.UUID      `json:"project_id,omitempty"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	Notes          string          `json:"notes"`
	Terms          string          `json:"terms"`
	Currency       string          `json:"currency"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Items          []itemRequest   `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q, err := h.svc.Create(r.Context(), userID, quote.CreateParams{
		ClientID:       req.ClientID,
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Summary:        req.Summary,
		ValidUntil:     req.ValidUntil,
		Notes:          req.Notes,
		Terms:          req.Terms,
		Currency:       req.Currency,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Items:          toItemParams(req.Items),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(q, time.Now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	filter := quote.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := quote.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("client_id"); s != "" {
		if clientID, err := uuid.Parse(s); err == nil {
			filter.ClientID = &clientID
		}
	}

	if s := r.URL.Query().Get("project_id"); s != "" {
		if projectID, err := uuid.Parse(s); err == nil {
			filter.ProjectID = &projectID
		}
	}

	quotes, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(quotes, time.Now()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	q, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(q, time.Now()))
}

type updateQuoteRequest struct {
	Title          *string          `json:"title,omitempty"`
	Summary        *string          `json:"summary,omitempty"`
	ValidUntil     *time.Time       `json:"valid_until,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	Terms          *string          `json:"terms,omitempty"`
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	Items          []itemRequest    `json:"items,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := quote.UpdateParams{
		Title:          req.Title,
		Summary:        req.Summary,
		ValidUntil:     req.ValidUntil,
		Notes:          req.Notes,
		Terms:          req.Terms,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
	}

	if req.Items != nil {
		params.Items = toItemParams(req.Items)
	}

	q, err := h.svc.Update(r.Context(), userID, id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(q, time.Now()))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// transition wraps the lifecycle endpoints, which differ only in the service
// call they make.
func (h *Handler) transition(apply func(ctx context.Context, userID, id uuid.UUID) (*quote.Quote, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		q, err := apply(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResponse(q, time.Now()))
	}
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.History(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryList(entries))
}

func writeError(w http.ResponseWriter, err error) {
	var verr *billing.ValidationError

	var terr *quote.TransitionError

	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.As(err, &terr):
		http.Error(w, terr.Error(), http.StatusConflict)
	case errors.Is(err, quote.ErrNotFound):
		http.Error(w, "quote not found", http.StatusNotFound)
	case errors.Is(err, quote.ErrConflict):
		http.Error(w, "quote modified concurrently", http.StatusConflict)
	case errors.Is(err, quote.ErrLocked):
		http.Error(w, "quote is locked", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toItemParams(items []itemRequest) []quote.ItemParams {
	params := make([]quote.ItemParams, len(items))
	for i, item := range items {
		params[i] = quote.ItemParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Discount:    item.Discount,
		}
	}

	return params
}
