package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pcruz7/lancer/internal/project"
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

// scanProject reads a project row from the scanner. Expected column order:
// id, user_id, client_id, name, description, status, hourly_rate, budget,
// start_date, end_date, version, created_at, updated_at, deleted_at
func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	var statusStr string

	var description sql.NullString

	if err := s.Scan(
		&p.ID, &p.UserID, &p.ClientID, &p.Name, &description, &statusStr,
		&p.HourlyRate, &p.Budget, &p.StartDate, &p.EndDate,
		&p.Version, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	); err != nil {
		return nil, err
	}

	p.Status = project.Status(statusStr)
	p.Description = description.String

	return &p, nil
}

const selectProjectColumns = `
	p.id, p.user_id, p.client_id, p.name, p.description, p.status,
	p.hourly_rate, p.budget, p.start_date, p.end_date,
	p.version, p.created_at, p.updated_at, p.deleted_at
`

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (user_id, client_id, name, description, status,
			hourly_rate, budget, start_date, end_date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.UserID,
		p.ClientID,
		p.Name,
		p.Description,
		p.Status,
		p.HourlyRate,
		p.Budget,
		p.StartDate,
		p.EndDate,
	).Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	return nil
}

func (s *Store) GetProject(ctx context.Context, userID, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + `
		FROM projects p
		WHERE p.id = $1 AND p.user_id = $2 AND p.deleted_at IS NULL`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, project.ErrNotFound
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, userID uuid.UUID, filter project.ListFilter) ([]*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + `
		FROM projects p
		WHERE p.user_id = $1 AND p.deleted_at IS NULL`

	args := []any{userID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND p.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET client_id = $1, name = $2, description = $3, status = $4,
			hourly_rate = $5, budget = $6, start_date = $7, end_date = $8,
			version = version + 1, updated_at = NOW()
		WHERE id = $9 AND user_id = $10 AND version = $11 AND deleted_at IS NULL
		RETURNING version, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.ClientID,
		p.Name,
		p.Description,
		p.Status,
		p.HourlyRate,
		p.Budget,
		p.StartDate,
		p.EndDate,
		p.ID,
		p.UserID,
		p.Version,
	).Scan(&p.Version, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return project.ErrConflict
		}

		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

func (s *Store) DeleteProject(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE projects
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	_, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	return nil
}
