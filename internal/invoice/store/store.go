package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/invoice"
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

// scanInvoice reads an invoice row from the scanner and returns a populated
// Invoice without its items and payments. Expected column order: id, user_id,
// client_id, project_id, quote_id, number, title, status, issue_date,
// due_date, paid_date, payment_terms, notes, terms, currency, subtotal,
// tax_amount, discount_amount, total_amount, amount_paid, balance_due,
// sent_at, viewed_at, version, created_at, updated_at, deleted_at
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var paymentTerms, notes, terms sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.UserID, &inv.ClientID, &inv.ProjectID, &inv.QuoteID,
		&inv.Number, &inv.Title, &statusStr, &inv.IssueDate, &inv.DueDate, &inv.PaidDate,
		&paymentTerms, &notes, &terms, &inv.Currency,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount,
		&inv.AmountPaid, &inv.BalanceDue,
		&inv.SentAt, &inv.ViewedAt,
		&inv.Version, &inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.PaymentTerms = paymentTerms.String
	inv.Notes = notes.String
	inv.Terms = terms.String

	return &inv, nil
}

const selectInvoiceColumns = `
	i.id, i.user_id, i.client_id, i.project_id, i.quote_id,
	i.number, i.title, i.status, i.issue_date, i.due_date, i.paid_date,
	i.payment_terms, i.notes, i.terms, i.currency,
	i.subtotal, i.tax_amount, i.discount_amount, i.total_amount,
	i.amount_paid, i.balance_due,
	i.sent_at, i.viewed_at,
	i.version, i.created_at, i.updated_at, i.deleted_at
`

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (user_id, client_id, project_id, quote_id, number, title, status,
			issue_date, due_date, payment_terms, notes, terms, currency,
			subtotal, tax_amount, discount_amount, total_amount, amount_paid, balance_due,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, 1, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.UserID,
		inv.ClientID,
		inv.ProjectID,
		inv.QuoteID,
		inv.Number,
		inv.Title,
		inv.Status,
		inv.IssueDate,
		inv.DueDate,
		inv.PaymentTerms,
		inv.Notes,
		inv.Terms,
		inv.Currency,
		inv.Subtotal,
		inv.TaxAmount,
		inv.DiscountAmount,
		inv.TotalAmount,
		inv.AmountPaid,
		inv.BalanceDue,
	).Scan(&inv.ID, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := replaceItems(ctx, dbTx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := replacePayments(ctx, dbTx, inv.ID, inv.Payments); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		WHERE i.id = $1 AND i.user_id = $2 AND i.deleted_at IS NULL`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := s.loadChildren(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, userID uuid.UUID, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		WHERE i.user_id = $1 AND i.deleted_at IS NULL`

	args := []any{userID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND i.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND i.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND i.project_id = $%d", argIdx)

		args = append(args, *filter.ProjectID)
		argIdx++
	}

	if filter.DueBefore != nil {
		query += fmt.Sprintf(" AND i.due_date <= $%d", argIdx)

		args = append(args, *filter.DueBefore)
		argIdx++
	}

	if filter.DueAfter != nil {
		query += fmt.Sprintf(" AND i.due_date >= $%d", argIdx)

		args = append(args, *filter.DueAfter)
		argIdx++
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	for _, inv := range invoices {
		if err := s.loadChildren(ctx, inv); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}

// UpdateInvoice persists the full snapshot guarded by its version. Items and
// payments are rewritten wholesale inside the same transaction.
func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE invoices
		SET client_id = $1, project_id = $2, quote_id = $3, title = $4, status = $5,
			issue_date = $6, due_date = $7, paid_date = $8,
			payment_terms = $9, notes = $10, terms = $11, currency = $12,
			subtotal = $13, tax_amount = $14, discount_amount = $15, total_amount = $16,
			amount_paid = $17, balance_due = $18, sent_at = $19, viewed_at = $20,
			version = version + 1, updated_at = NOW()
		WHERE id = $21 AND user_id = $22 AND version = $23 AND deleted_at IS NULL
		RETURNING version, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.ClientID,
		inv.ProjectID,
		inv.QuoteID,
		inv.Title,
		inv.Status,
		inv.IssueDate,
		inv.DueDate,
		inv.PaidDate,
		inv.PaymentTerms,
		inv.Notes,
		inv.Terms,
		inv.Currency,
		inv.Subtotal,
		inv.TaxAmount,
		inv.DiscountAmount,
		inv.TotalAmount,
		inv.AmountPaid,
		inv.BalanceDue,
		inv.SentAt,
		inv.ViewedAt,
		inv.ID,
		inv.UserID,
		inv.Version,
	).Scan(&inv.Version, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrConflict
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	if err := replaceItems(ctx, dbTx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := replacePayments(ctx, dbTx, inv.ID, inv.Payments); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	_, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

// NextNumber hands out the next value of the per-user, per-year invoice
// sequence.
func (s *Store) NextNumber(ctx context.Context, userID uuid.UUID, year int) (int64, error) {
	query := `
		INSERT INTO document_numbers (user_id, prefix, year, last_seq)
		VALUES ($1, 'INV', $2, 1)
		ON CONFLICT (user_id, prefix, year) DO UPDATE SET last_seq = document_numbers.last_seq + 1
		RETURNING last_seq
	`

	var seq int64
	if err := s.db.QueryRowContext(ctx, query, userID, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}

	return seq, nil
}

func (s *Store) loadChildren(ctx context.Context, inv *invoice.Invoice) error {
	var err error

	if inv.Items, err = s.listItems(ctx, inv.ID); err != nil {
		return err
	}

	inv.Payments, err = s.listPayments(ctx, inv.ID)

	return err
}

func (s *Store) listItems(ctx context.Context, invoiceID uuid.UUID) ([]billing.LineItem, error) {
	query := `
		SELECT id, description, quantity, unit_price, tax_rate, discount, total, sort_order, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY sort_order ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	var items []billing.LineItem

	for rows.Next() {
		var item billing.LineItem
		if err := rows.Scan(
			&item.ID, &item.Description, &item.Quantity, &item.UnitPrice,
			&item.TaxRate, &item.Discount, &item.Total, &item.SortOrder, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

func (s *Store) listPayments(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Payment, error) {
	query := `
		SELECT id, invoice_id, method, transaction_id, amount, currency, payment_date, notes, status, created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY payment_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []invoice.Payment

	for rows.Next() {
		var p invoice.Payment

		var method, status string

		var transactionID, notes sql.NullString

		if err := rows.Scan(
			&p.ID, &p.InvoiceID, &method, &transactionID, &p.Amount, &p.Currency,
			&p.PaymentDate, &notes, &status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		p.Method = invoice.PaymentMethod(method)
		p.Status = invoice.PaymentStatus(status)
		p.TransactionID = transactionID.String
		p.Notes = notes.String

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

func replaceItems(ctx context.Context, dbTx *sql.Tx, invoiceID uuid.UUID, items []billing.LineItem) error {
	if _, err := dbTx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("clearing invoice items: %w", err)
	}

	query := `
		INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, tax_rate, discount, total, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	for i := range items {
		item := &items[i]

		err := dbTx.QueryRowContext(ctx, query,
			invoiceID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.TaxRate,
			item.Discount,
			item.Total,
			item.SortOrder,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating invoice item: %w", err)
		}
	}

	return nil
}

// replacePayments upserts the payment snapshot. Payment IDs are assigned by
// the service, so rows keep their identity across rewrites.
func replacePayments(ctx context.Context, dbTx *sql.Tx, invoiceID uuid.UUID, payments []invoice.Payment) error {
	if _, err := dbTx.ExecContext(ctx, "DELETE FROM payments WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("clearing payments: %w", err)
	}

	query := `
		INSERT INTO payments (id, invoice_id, method, transaction_id, amount, currency, payment_date, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i := range payments {
		p := &payments[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = p.PaymentDate
		}

		_, err := dbTx.ExecContext(ctx, query,
			p.ID,
			invoiceID,
			p.Method,
			p.TransactionID,
			p.Amount,
			p.Currency,
			p.PaymentDate,
			p.Notes,
			p.Status,
			p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating payment: %w", err)
		}
	}

	return nil
}
