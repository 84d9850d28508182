// Package export runs the CSV to SQL exporters: it reads an input CSV, renders
// the script for the configured dialect and replaces the output file. Nothing
// here connects to a database.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"climate/internal/climate"
	"climate/internal/datasource"
	"climate/internal/datasource/httpds"
	"climate/internal/ddl"
	"climate/internal/metrics"
	"climate/internal/sqlgen"
)

const job = "export"

// Kinds in the order All runs them. The prediction table references the
// country table, so countries comes first.
const (
	KindCountries   = "countries"
	KindAnnual      = "annual"
	KindPredictions = "predictions"
)

// Kinds lists every exporter.
var Kinds = []string{KindCountries, KindAnnual, KindPredictions}

// Target is the input, output and quote escaping of one exporter.
type Target struct {
	Input  string
	Output string
	Escape sqlgen.Escape
}

// Options configures the exporters.
type Options struct {
	Dialect     ddl.Dialect
	Tables      sqlgen.Tables
	Countries   Target
	Annual      Target
	Predictions Target
	HTTP        httpds.Config
}

// Result describes one written script.
type Result struct {
	Kind        string
	Input       string
	Output      string
	Rows        int
	Bytes       int
	Fingerprint string
}

// Run executes the exporter named kind.
func Run(ctx context.Context, kind string, opts Options) (Result, error) {
	switch kind {
	case KindCountries:
		return Countries(ctx, opts)
	case KindAnnual:
		return Annual(ctx, opts)
	case KindPredictions:
		return Predictions(ctx, opts)
	default:
		return Result{}, fmt.Errorf("export: unknown kind %q", kind)
	}
}

// All runs every exporter in Kinds order and stops at the first failure. The
// results of the exporters that finished are returned with the error.
func All(ctx context.Context, opts Options) ([]Result, error) {
	out := make([]Result, 0, len(Kinds))
	for _, kind := range Kinds {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := Run(ctx, kind, opts)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Countries exports the two-column country reference CSV.
func Countries(ctx context.Context, opts Options) (Result, error) {
	t := opts.Countries
	return run(ctx, KindCountries, t, opts.HTTP, func(raw []byte) (string, int, error) {
		rows, err := climate.ReadCountries(bytes.NewReader(raw))
		if err != nil {
			return "", 0, err
		}
		script, err := sqlgen.CountryScript(opts.Dialect, opts.Tables.Countries, t.Escape, rows)
		return script, len(rows), err
	})
}

// Annual exports the wide official temperature CSV.
func Annual(ctx context.Context, opts Options) (Result, error) {
	t := opts.Annual
	return run(ctx, KindAnnual, t, opts.HTTP, func(raw []byte) (string, int, error) {
		wide, err := climate.ReadWide(bytes.NewReader(raw))
		if err != nil {
			return "", 0, err
		}
		script, err := sqlgen.AnnualScript(opts.Dialect, opts.Tables.Annual, t.Escape, wide)
		return script, len(wide.Rows), err
	})
}

// Predictions exports a predicted-temperature CSV.
func Predictions(ctx context.Context, opts Options) (Result, error) {
	t := opts.Predictions
	return run(ctx, KindPredictions, t, opts.HTTP, func(raw []byte) (string, int, error) {
		preds, err := climate.ReadPredictions(bytes.NewReader(raw))
		if err != nil {
			return "", 0, err
		}
		script, err := sqlgen.PredictionScript(opts.Dialect, opts.Tables, t.Escape, preds)
		return script, len(preds), err
	})
}

type renderFunc func(raw []byte) (script string, rows int, err error)

func run(ctx context.Context, kind string, t Target, hc httpds.Config, render renderFunc) (Result, error) {
	res := Result{Kind: kind, Input: t.Input, Output: t.Output}
	var script string

	err := metrics.Step(job, kind+"_read", func() error {
		raw, err := datasource.ReadAll(ctx, datasource.For(t.Input, hc))
		if err != nil {
			return err
		}
		if script, res.Rows, err = render(raw); err != nil {
			return fmt.Errorf("%s: %w", t.Input, err)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("export %s: %w", kind, err)
	}

	err = metrics.Step(job, kind+"_write", func() error {
		return sqlgen.Write(ctx, t.Output, script)
	})
	if err != nil {
		return res, fmt.Errorf("export %s: %w", kind, err)
	}

	res.Bytes = len(script)
	res.Fingerprint = sqlgen.Fingerprint(script)
	metrics.RecordRows(job, kind, res.Rows)
	log.Printf("export: kind=%s input=%s output=%s rows=%d", kind, t.Input, t.Output, res.Rows)
	return res, nil
}
