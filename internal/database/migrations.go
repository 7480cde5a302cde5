package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migrate runs all table creation statements. Safe to call multiple times
// due to IF NOT EXISTS clauses.
func Migrate(db *sql.DB) error {
	slog.Info("running database migrations")

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nstatement: %s", err, stmt)
		}
	}

	slog.Info("database migrations complete")

	return nil
}

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	// Accounts
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT,
		business_name TEXT,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ
	)`,

	// Clients
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		company_name TEXT,
		contact_name TEXT,
		email TEXT,
		phone TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		postal_code TEXT,
		tax_number TEXT,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'archived')),
		category TEXT NOT NULL DEFAULT '',
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)`,

	// Projects
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'completed', 'on_hold', 'cancelled')),
		hourly_rate NUMERIC(12,2),
		budget NUMERIC(12,2),
		start_date DATE,
		end_date DATE,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)`,

	// Quotes and their line items
	`CREATE TABLE IF NOT EXISTS quotes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		project_id UUID REFERENCES projects(id) ON DELETE SET NULL,
		number TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT,
		status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'sent', 'viewed', 'accepted', 'rejected', 'expired')),
		valid_until DATE,
		notes TEXT,
		terms TEXT,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		sent_at TIMESTAMPTZ,
		viewed_at TIMESTAMPTZ,
		accepted_at TIMESTAMPTZ,
		rejected_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ,
		UNIQUE (user_id, number)
	)`,

	`CREATE TABLE IF NOT EXISTS quote_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		quote_id UUID NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		quantity NUMERIC(12,3) NOT NULL DEFAULT 1,
		unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_rate NUMERIC(6,4) NOT NULL DEFAULT 0,
		discount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS quote_history (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		quote_id UUID NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
		action TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Invoices, their line items and payments
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		project_id UUID REFERENCES projects(id) ON DELETE SET NULL,
		quote_id UUID REFERENCES quotes(id) ON DELETE SET NULL,
		number TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'sent', 'viewed', 'partial', 'paid', 'overdue', 'cancelled')),
		issue_date DATE NOT NULL,
		due_date DATE NOT NULL,
		paid_date DATE,
		payment_terms TEXT,
		notes TEXT,
		terms TEXT,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		amount_paid NUMERIC(14,2) NOT NULL DEFAULT 0,
		balance_due NUMERIC(14,2) NOT NULL DEFAULT 0,
		sent_at TIMESTAMPTZ,
		viewed_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ,
		UNIQUE (user_id, number)
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		quantity NUMERIC(12,3) NOT NULL DEFAULT 1,
		unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_rate NUMERIC(6,4) NOT NULL DEFAULT 0,
		discount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		method TEXT NOT NULL DEFAULT 'other',
		transaction_id TEXT,
		amount NUMERIC(14,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		payment_date DATE NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'completed' CHECK(status IN ('pending', 'completed', 'failed', 'refunded')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Per-user, per-year document number sequences
	`CREATE TABLE IF NOT EXISTS document_numbers (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		prefix TEXT NOT NULL,
		year INTEGER NOT NULL,
		last_seq BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, prefix, year)
	)`,

	// Indexes for common queries
	`CREATE INDEX IF NOT EXISTS idx_clients_user ON clients(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_user ON quotes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_client ON quotes(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_status ON quotes(status)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_items_quote ON quote_items(quote_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_history_quote ON quote_history(quote_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_user ON invoices(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_due ON invoices(due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_invoice ON payments(invoice_id)`,
}
