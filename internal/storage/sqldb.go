package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"climate/internal/ddl"
)

// SQLRepository implements Repository over a database/sql pool. The MySQL,
// SQL Server and SQLite backends share it.
type SQLRepository struct {
	db      *sql.DB
	dialect ddl.Dialect
	prefix  string
}

// NewSQLRepository wraps db. prefix labels errors (e.g. "mysql").
func NewSQLRepository(db *sql.DB, d ddl.Dialect, prefix string) *SQLRepository {
	return &SQLRepository{db: db, dialect: d, prefix: prefix}
}

// Ping verifies the connection within ctx.
func (r *SQLRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w", r.prefix, err)
	}
	return nil
}

func (r *SQLRepository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: exec: %w", r.prefix, err)
	}
	return nil
}

func (r *SQLRepository) Query(ctx context.Context, query string, args ...any) (Result, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("%s: query: %w", r.prefix, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("%s: columns: %w", r.prefix, err)
	}
	res := Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("%s: scan: %w", r.prefix, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("%s: rows: %w", r.prefix, err)
	}
	return res, nil
}

func (r *SQLRepository) Dialect() ddl.Dialect { return r.dialect }

func (r *SQLRepository) Close() { _ = r.db.Close() }
