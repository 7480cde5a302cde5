package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Pool bounds the database connection pool.
type Pool struct {
	MaxConns  int
	IdleConns int
}

func New(connStr string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxConns)
	db.SetMaxIdleConns(pool.IdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
