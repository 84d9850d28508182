// Package mysql implements a MySQL-backed storage.Repository using
// go-sql-driver/mysql over database/sql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"climate/internal/ddl"
	"climate/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN            string // go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/climate"
	ConnectTimeout time.Duration
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	*storage.SQLRepository
}

// openDB is swapped in tests for a sqlmock connection.
var openDB = sql.Open

// NewRepository validates the DSN, opens the pool and pings it. The returned
// function closes the pool.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	parsed, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	if parsed.Timeout == 0 {
		parsed.Timeout = cfg.ConnectTimeout
	}

	db, err := openDB("mysql", parsed.FormatDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	repo := &Repository{SQLRepository: storage.NewSQLRepository(db, ddl.MySQL(), "mysql")}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, func() { _ = db.Close() }, nil
}
