package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/quote"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanQuote reads a quote row from the scanner and returns a populated Quote
// without its items. Expected column order: id, user_id, client_id,
// project_id, number, title, summary, status, valid_until, notes, terms,
// currency, subtotal, tax_amount, discount_amount, total_amount, sent_at,
// viewed_at, accepted_at, rejected_at, version, created_at, updated_at,
// deleted_at
func scanQuote(s scanner) (*quote.Quote, error) {
	var q quote.Quote

	var statusStr string

	var summary, notes, terms sql.NullString

	if err := s.Scan(
		&q.ID, &q.UserID, &q.ClientID, &q.ProjectID, &q.Number, &q.Title, &summary,
		&statusStr, &q.ValidUntil, &notes, &terms, &q.Currency,
		&q.Subtotal, &q.TaxAmount, &q.DiscountAmount, &q.TotalAmount,
		&q.SentAt, &q.ViewedAt, &q.AcceptedAt, &q.RejectedAt,
		&q.Version, &q.CreatedAt, &q.UpdatedAt, &q.DeletedAt,
	); err != nil {
		return nil, err
	}

	q.Status = quote.Status(statusStr)
	q.Summary = summary.String
	q.Notes = notes.String
	q.Terms = terms.String

	return &q, nil
}

const selectQuoteColumns = `
	q.id, q.user_id, q.client_id, q.project_id, q.number, q.title, q.summary,
	q.status, q.valid_until, q.notes, q.terms, q.currency,
	q.subtotal, q.tax_amount, q.discount_amount, q.total_amount,
	q.sent_at, q.viewed_at, q.accepted_at, q.rejected_at,
	q.version, q.created_at, q.updated_at, q.deleted_at
`

func (s *Store) CreateQuote(ctx context.Context, q *quote.Quote) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO quotes (user_id, client_id, project_id, number, title, summary, status,
			valid_until, notes, terms, currency,
			subtotal, tax_amount, discount_amount, total_amount, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		q.UserID,
		q.ClientID,
		q.ProjectID,
		q.Number,
		q.Title,
		q.Summary,
		q.Status,
		q.ValidUntil,
		q.Notes,
		q.Terms,
		q.Currency,
		q.Subtotal,
		q.TaxAmount,
		q.DiscountAmount,
		q.TotalAmount,
	).Scan(&q.ID, &q.Version, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating quote: %w", err)
	}

	if err := replaceItems(ctx, dbTx, q.ID, q.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetQuote(ctx context.Context, userID, id uuid.UUID) (*quote.Quote, error) {
	query := `SELECT ` + selectQuoteColumns + `
		FROM quotes q
		WHERE q.id = $1 AND q.user_id = $2 AND q.deleted_at IS NULL`

	q, err := scanQuote(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, quote.ErrNotFound
		}

		return nil, fmt.Errorf("getting quote: %w", err)
	}

	if q.Items, err = s.listItems(ctx, q.ID); err != nil {
		return nil, err
	}

	return q, nil
}

func (s *Store) ListQuotes(ctx context.Context, userID uuid.UUID, filter quote.ListFilter) ([]*quote.Quote, error) {
	query := `SELECT ` + selectQuoteColumns + `
		FROM quotes q
		WHERE q.user_id = $1 AND q.deleted_at IS NULL`

	args := []any{userID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND q.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND q.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND q.project_id = $%d", argIdx)

		args = append(args, *filter.ProjectID)
		argIdx++
	}

	query += " ORDER BY q.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*quote.Quote

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}

		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quote rows: %w", err)
	}

	for _, q := range quotes {
		if q.Items, err = s.listItems(ctx, q.ID); err != nil {
			return nil, err
		}
	}

	return quotes, nil
}

// UpdateQuote persists the full snapshot guarded by its version. Items are
// rewritten wholesale inside the same transaction.
func (s *Store) UpdateQuote(ctx context.Context, q *quote.Quote) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE quotes
		SET client_id = $1, project_id = $2, title = $3, summary = $4, status = $5,
			valid_until = $6, notes = $7, terms = $8, currency = $9,
			subtotal = $10, tax_amount = $11, discount_amount = $12, total_amount = $13,
			sent_at = $14, viewed_at = $15, accepted_at = $16, rejected_at = $17,
			version = version + 1, updated_at = NOW()
		WHERE id = $18 AND user_id = $19 AND version = $20 AND deleted_at IS NULL
		RETURNING version, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		q.ClientID,
		q.ProjectID,
		q.Title,
		q.Summary,
		q.Status,
		q.ValidUntil,
		q.Notes,
		q.Terms,
		q.Currency,
		q.Subtotal,
		q.TaxAmount,
		q.DiscountAmount,
		q.TotalAmount,
		q.SentAt,
		q.ViewedAt,
		q.AcceptedAt,
		q.RejectedAt,
		q.ID,
		q.UserID,
		q.Version,
	).Scan(&q.Version, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quote.ErrConflict
		}

		return fmt.Errorf("updating quote: %w", err)
	}

	if err := replaceItems(ctx, dbTx, q.ID, q.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteQuote(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE quotes
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	_, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	return nil
}

// NextNumber hands out the next value of the per-user, per-year quote
// sequence. The upsert keeps it gap-free under concurrent callers.
func (s *Store) NextNumber(ctx context.Context, userID uuid.UUID, year int) (int64, error) {
	query := `
		INSERT INTO document_numbers (user_id, prefix, year, last_seq)
		VALUES ($1, 'QUO', $2, 1)
		ON CONFLICT (user_id, prefix, year) DO UPDATE SET last_seq = document_numbers.last_seq + 1
		RETURNING last_seq
	`

	var seq int64
	if err := s.db.QueryRowContext(ctx, query, userID, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next quote number: %w", err)
	}

	return seq, nil
}

func (s *Store) AddHistory(ctx context.Context, h *quote.History) error {
	query := `
		INSERT INTO quote_history (quote_id, action, description, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, h.QuoteID, h.Action, h.Description).
		Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("adding quote history: %w", err)
	}

	return nil
}

func (s *Store) ListHistory(ctx context.Context, userID, quoteID uuid.UUID) ([]*quote.History, error) {
	query := `
		SELECT h.id, h.quote_id, h.action, h.description, h.created_at
		FROM quote_history h
		JOIN quotes q ON q.id = h.quote_id
		WHERE h.quote_id = $1 AND q.user_id = $2
		ORDER BY h.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, quoteID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing quote history: %w", err)
	}
	defer rows.Close()

	var entries []*quote.History

	for rows.Next() {
		var h quote.History

		var action string

		if err := rows.Scan(&h.ID, &h.QuoteID, &action, &h.Description, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning quote history: %w", err)
		}

		h.Action = quote.HistoryAction(action)
		entries = append(entries, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return entries, nil
}

func (s *Store) listItems(ctx context.Context, quoteID uuid.UUID) ([]billing.LineItem, error) {
	query := `
		SELECT id, description, quantity, unit_price, tax_rate, discount, total, sort_order, created_at
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY sort_order ASC
	`

	rows, err := s.db.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("listing quote items: %w", err)
	}
	defer rows.Close()

	var items []billing.LineItem

	for rows.Next() {
		var item billing.LineItem
		if err := rows.Scan(
			&item.ID, &item.Description, &item.Quantity, &item.UnitPrice,
			&item.TaxRate, &item.Discount, &item.Total, &item.SortOrder, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning quote item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

func replaceItems(ctx context.Context, dbTx *sql.Tx, quoteID uuid.UUID, items []billing.LineItem) error {
	if _, err := dbTx.ExecContext(ctx, "DELETE FROM quote_items WHERE quote_id = $1", quoteID); err != nil {
		return fmt.Errorf("clearing quote items: %w", err)
	}

	query := `
		INSERT INTO quote_items (quote_id, description, quantity, unit_price, tax_rate, discount, total, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	for i := range items {
		item := &items[i]

		err := dbTx.QueryRowContext(ctx, query,
			quoteID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.TaxRate,
			item.Discount,
			item.Total,
			item.SortOrder,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating quote item: %w", err)
		}
	}

	return nil
}
