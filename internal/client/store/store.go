package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/client"
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

// scanClient reads a client row from the scanner. Expected column order: id,
// user_id, company_name, contact_name, email, phone, address, city, state,
// country, postal_code, tax_number, notes, status, category, version,
// created_at, updated_at, deleted_at
func scanClient(s scanner) (*client.Client, error) {
	var c client.Client

	var statusStr, categoryStr string

	var company, contact, email, phone, address, city, state, country, postal, taxNumber, notes sql.NullString

	if err := s.Scan(
		&c.ID, &c.UserID, &company, &contact, &email, &phone,
		&address, &city, &state, &country, &postal, &taxNumber, &notes,
		&statusStr, &categoryStr,
		&c.Version, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}

	c.CompanyName = company.String
	c.ContactName = contact.String
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.City = city.String
	c.State = state.String
	c.Country = country.String
	c.PostalCode = postal.String
	c.TaxNumber = taxNumber.String
	c.Notes = notes.String
	c.Status = client.Status(statusStr)
	c.Category = client.Category(categoryStr)

	return &c, nil
}

const selectClientColumns = `
	c.id, c.user_id, c.company_name, c.contact_name, c.email, c.phone,
	c.address, c.city, c.state, c.country, c.postal_code, c.tax_number, c.notes,
	c.status, c.category, c.version, c.created_at, c.updated_at, c.deleted_at
`

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (user_id, company_name, contact_name, email, phone,
			address, city, state, country, postal_code, tax_number, notes,
			status, category, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.UserID,
		c.CompanyName,
		c.ContactName,
		c.Email,
		c.Phone,
		c.Address,
		c.City,
		c.State,
		c.Country,
		c.PostalCode,
		c.TaxNumber,
		c.Notes,
		c.Status,
		c.Category,
	).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, userID, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + `
		FROM clients c
		WHERE c.id = $1 AND c.user_id = $2 AND c.deleted_at IS NULL`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, userID uuid.UUID, filter client.ListFilter) ([]*client.Client, error) {
	query := `SELECT ` + selectClientColumns + `
		FROM clients c
		WHERE c.user_id = $1 AND c.deleted_at IS NULL`

	args := []any{userID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND c.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND c.category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (c.company_name ILIKE $%d OR c.contact_name ILIKE $%d OR c.email ILIKE $%d)", argIdx, argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY c.company_name ASC, c.contact_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET company_name = $1, contact_name = $2, email = $3, phone = $4,
			address = $5, city = $6, state = $7, country = $8, postal_code = $9,
			tax_number = $10, notes = $11, status = $12, category = $13,
			version = version + 1, updated_at = NOW()
		WHERE id = $14 AND user_id = $15 AND version = $16 AND deleted_at IS NULL
		RETURNING version, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.CompanyName,
		c.ContactName,
		c.Email,
		c.Phone,
		c.Address,
		c.City,
		c.State,
		c.Country,
		c.PostalCode,
		c.TaxNumber,
		c.Notes,
		c.Status,
		c.Category,
		c.ID,
		c.UserID,
		c.Version,
	).Scan(&c.Version, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return client.ErrConflict
		}

		return fmt.Errorf("updating client: %w", err)
	}

	return nil
}

func (s *Store) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE clients
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	_, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	return nil
}
