package report

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/auth"
	"github.com/pcruz7/lancer/internal/client"
	"github.com/pcruz7/lancer/internal/invoice"
	"github.com/pcruz7/lancer/internal/project"
	"github.com/pcruz7/lancer/internal/quote"
	"github.com/pcruz7/lancer/internal/report"
)

// Handler computes reporting views by loading a user's full document
// collections and running the aggregations in memory.
type Handler struct {
	quotes   *quote.Service
	invoices *invoice.Service
	projects *project.Service
	clients  *client.Service
}

func NewHandler(quotes *quote.Service, invoices *invoice.Service, projects *project.Service, clients *client.Service) *Handler {
	return &Handler{
		quotes:   quotes,
		invoices: invoices,
		projects: projects,
		clients:  clients,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/aging", h.aging)
	r.Get("/clients/{id}", h.clientSummary)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	ctx := r.Context()

	quotes, err := h.quotes.List(ctx, userID, quote.ListFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	invoices, err := h.invoices.List(ctx, userID, invoice.ListFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	projects, err := h.projects.List(ctx, userID, project.ListFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	clients, err := h.clients.List(ctx, userID, client.ListFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	stats := report.Dashboard(quotes, invoices, projects, clients, time.Now())
	writeJSON(w, http.StatusOK, toDashboardResponse(stats))
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	invoices, err := h.invoices.List(r.Context(), userID, invoice.ListFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	rows := report.Aging(invoices, time.Now())
	writeJSON(w, http.StatusOK, toAgingResponse(rows))
}

func (h *Handler) clientSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.clients.Get(ctx, userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	invoices, err := h.invoices.List(ctx, userID, invoice.ListFilter{ClientID: &id})
	if err != nil {
		writeError(w, err)
		return
	}

	quotes, err := h.quotes.List(ctx, userID, quote.ListFilter{ClientID: &id})
	if err != nil {
		writeError(w, err)
		return
	}

	projects, err := h.projects.List(ctx, userID, project.ListFilter{ClientID: &id})
	if err != nil {
		writeError(w, err)
		return
	}

	summary := report.Summary(c, invoices, quotes, projects, time.Now())
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, client.ErrNotFound) {
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
