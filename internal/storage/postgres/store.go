// Package postgres provides Postgres-backed persistence for ArtConnect.
//
// Purpose:
//
//	This package owns every read and write the dashboard, pipeline board and
//	report pipeline perform: artworks, contacts, pipeline cards, stored
//	reports and portfolio traffic. All queries are scoped to an artist id and
//	use pgxpool for connection pooling.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned when a scoped lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store provides Postgres-backed persistence for ArtConnect data.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store using the provided connection string.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewStoreFromPool wraps an existing pool.
func NewStoreFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Pool exposes the underlying pgx pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SQLDB returns a database/sql handle sharing the pool, for goose migrations.
func (s *Store) SQLDB() *sql.DB {
	return stdlib.OpenDBFromPool(s.pool)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts "asc" and "desc" in any case; empty means Desc.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return Desc, nil
	case "asc":
		return Asc, nil
	}
	return "", fmt.Errorf("unsupported order %q", s)
}

func (o Order) sql() string {
	if o == Asc {
		return "ASC"
	}
	return "DESC"
}

// clampLimit bounds list sizes to [1, 100], defaulting to 50.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 100 {
		return 100
	}
	return limit
}
