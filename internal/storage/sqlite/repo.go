// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"climate/internal/ddl"
	"climate/internal/storage"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:climate.db"
	//   ":memory:"
	DSN string

	ConnectTimeout time.Duration
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	*storage.SQLRepository
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
//
// The pool is limited to one connection: SQLite serializes writers anyway and
// an in-memory database exists only on the connection that created it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	d, _ := ddl.Lookup("sqlite")
	repo := &Repository{SQLRepository: storage.NewSQLRepository(db, d, "sqlite")}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		db.Close()
		return nil, nil, err
	}

	// Prediction rows reference the country table.
	if err := repo.Exec(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, nil, err
	}

	closeFn := func() { db.Close() }
	return repo, closeFn, nil
}
