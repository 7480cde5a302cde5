package invoice

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
	"github.com/pcruz7/lancer/internal/invoice"
	"github.com/pcruz7/lancer/internal/quote"
)

type Handler struct {
	svc    *invoice.Service
	quotes *quote.Service
}

func NewHandler(svc *invoice.Service, quotes *quote.Service) *Handler {
	return &Handler{svc: svc, quotes: quotes}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/from-quote/{quoteID}", h.createFromQuote)
	r.Get("/", h.list)
	r.Get("/overdue", h.listOverdue)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/send", h.transition(h.svc.Send))
	r.Post("/{id}/view", h.transition(h.svc.MarkViewed))
	r.Post("/{id}/cancel", h.transition(h.svc.Cancel))
	r.Post("/{id}/mark-overdue", h.transition(h.svc.MarkOverdue))
	r.Post("/{id}/payments", h.recordPayment)
	r.Delete("/{id}/payments/{paymentID}", h.voidPayment)
}

type itemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
}

type createInvoiceRequest struct {
	ClientID       uuid.UUID       `json:"client_id"`
	ProjectID      *uuid.UUID      `json:"project_id,omitempty"`
	Title          string          `json:"title"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	PaymentTerms   string          `json:"payment_terms"`
	Notes          string          `json:"notes"`
	Terms          string          `json:"terms"`
	Currency       string          `json:"currency"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Items          []itemRequest   `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Create(r.Context(), userID, invoice.CreateParams{
		ClientID:       req.ClientID,
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		PaymentTerms:   req.PaymentTerms,
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

	writeJSON(w, http.StatusCreated, toResponse(inv, time.Now()))
}

type fromQuoteRequest struct {
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`
}

func (h *Handler) createFromQuote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	quoteID, err := uuid.Parse(chi.URLParam(r, "quoteID"))
	if err != nil {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return
	}

	var req fromQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q, err := h.quotes.Get(r.Context(), userID, quoteID)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			http.Error(w, "quote not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	inv, err := h.svc.CreateFromQuote(r.Context(), userID, q, req.IssueDate, req.DueDate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(inv, time.Now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := invoice.Status(s)
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

	if s := r.URL.Query().Get("due_before"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.DueBefore = &t
		}
	}

	if s := r.URL.Query().Get("due_after"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.DueAfter = &t
		}
	}

	invoices, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(invoices, time.Now()))
}

func (h *Handler) listOverdue(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	invoices, err := h.svc.ListOverdue(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(invoices, time.Now()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv, time.Now()))
}

type updateInvoiceRequest struct {
	Title          *string          `json:"title,omitempty"`
	IssueDate      *time.Time       `json:"issue_date,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	PaymentTerms   *string          `json:"payment_terms,omitempty"`
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

	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := invoice.UpdateParams{
		Title:          req.Title,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		PaymentTerms:   req.PaymentTerms,
		Notes:          req.Notes,
		Terms:          req.Terms,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
	}

	if req.Items != nil {
		params.Items = toItemParams(req.Items)
	}

	inv, err := h.svc.Update(r.Context(), userID, id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv, time.Now()))
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

type recordPaymentRequest struct {
	Method        invoice.PaymentMethod `json:"method"`
	TransactionID string                `json:"transaction_id"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency"`
	PaymentDate   time.Time             `json:"payment_date"`
	Notes         string                `json:"notes"`
	Status        invoice.PaymentStatus `json:"status"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, warn, err := h.svc.RecordPayment(r.Context(), userID, id, invoice.PaymentParams{
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentDate:   req.PaymentDate,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := paymentResult{Invoice: toResponse(inv, time.Now())}
	if warn != nil {
		resp.Warnings = append(resp.Warnings, warn.String())
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) voidPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	paymentID, err := uuid.Parse(chi.URLParam(r, "paymentID"))
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.VoidPayment(r.Context(), userID, id, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv, time.Now()))
}

// transition wraps the lifecycle endpoints, which differ only in the service
// call they make.
func (h *Handler) transition(apply func(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		inv, err := apply(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResponse(inv, time.Now()))
	}
}

func writeError(w http.ResponseWriter, err error) {
	var verr *billing.ValidationError

	var terr *invoice.TransitionError

	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.As(err, &terr):
		http.Error(w, terr.Error(), http.StatusConflict)
	case errors.Is(err, invoice.ErrNotFound):
		http.Error(w, "invoice not found", http.StatusNotFound)
	case errors.Is(err, invoice.ErrPaymentNotFound):
		http.Error(w, "payment not found", http.StatusNotFound)
	case errors.Is(err, invoice.ErrConflict):
		http.Error(w, "invoice modified concurrently", http.StatusConflict)
	case errors.Is(err, invoice.ErrLocked):
		http.Error(w, "invoice is locked", http.StatusConflict)
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

func toItemParams(items []itemRequest) []invoice.ItemParams {
	params := make([]invoice.ItemParams, len(items))
	for i, item := range items {
		params[i] = invoice.ItemParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Discount:    item.Discount,
		}
	}

	return params
}
