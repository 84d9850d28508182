// Package postgres implements a Postgres repository using a pgx v5 pool.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"climate/internal/ddl"
	"climate/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN            string // connection string for pgxpool
	ConnectTimeout time.Duration
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool    *pgxpool.Pool
	dialect ddl.Dialect
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres: ping: %w", err)
		}
	}
	d, _ := ddl.Lookup("postgres")
	close := func() { pool.Close() }
	return &Repository{pool: pool, dialect: d}, close, nil
}

// Exec runs one statement.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// Query reads every row of query. Column names come from the field
// descriptions.
func (r *Repository) Query(ctx context.Context, query string, args ...any) (storage.Result, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return storage.Result{}, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	var res storage.Result
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return storage.Result{}, fmt.Errorf("postgres: values: %w", err)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return storage.Result{}, fmt.Errorf("postgres: rows: %w", err)
	}
	return res, nil
}

// Dialect reports the postgres dialect.
func (r *Repository) Dialect() ddl.Dialect { return r.dialect }
