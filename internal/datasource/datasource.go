// Package datasource resolves pipeline input locations to readable sources.
// A location is either a local path or an http(s) URL.
package datasource

import (
	"context"
	"fmt"
	"io"
	"strings"

	"climate/internal/datasource/file"
	"climate/internal/datasource/httpds"
)

// Source opens a readable input. Implementations must honor ctx cancellation
// before touching the underlying resource.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// For returns the Source for location. URLs are fetched with an httpds client
// built from cfg; anything else is a local file.
func For(location string, cfg httpds.Config) Source {
	if IsURL(location) {
		return httpds.Source{Client: httpds.NewClient(cfg), URL: location}
	}
	return file.NewLocal(location)
}

// IsURL reports whether location uses the http or https scheme.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// ReadAll opens src and returns its full contents.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}
