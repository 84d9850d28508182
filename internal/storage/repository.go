// Package storage opens the databases the exported scripts are loaded into and
// runs statements and queries against them behind a backend-agnostic
// Repository.
//
// Backends register a Factory under their kind from init(); importing
// climate/internal/storage/all makes every built-in backend available.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"climate/internal/ddl"
)

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name: mysql, postgres, sqlserver, sqlite.
	Kind string
	// DSN is passed to the backend driver.
	DSN string
	// ConnectTimeout bounds the initial ping. Zero means 10s.
	ConnectTimeout time.Duration
}

// Result is a fully read query result. Text values are returned as string.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Repository executes statements against one open database.
type Repository interface {
	// Exec runs a single statement.
	Exec(ctx context.Context, stmt string) error
	// Query runs a query and reads every row.
	Query(ctx context.Context, query string, args ...any) (Result, error)
	// Dialect describes how SQL for this database is rendered.
	Dialect() ddl.Dialect
	// Close releases the connection pool.
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the backend registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Timeout returns cfg.ConnectTimeout or the default.
func (cfg Config) Timeout() time.Duration {
	if cfg.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.ConnectTimeout
}
