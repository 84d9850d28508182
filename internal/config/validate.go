package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"climate/internal/ddl"
	"climate/internal/sqlgen"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "export.annual.escape"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Issues is the result of Validate.
type Issues []Issue

// Err folds the error-severity issues into one error, or returns nil.
func (is Issues) Err() error {
	var result *multierror.Error
	for _, i := range is {
		if i.Severity == SeverityError {
			result = multierror.Append(result, i)
		}
	}
	return result.ErrorOrNil()
}

// Warnings returns the warning-severity issues.
func (is Issues) Warnings() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Validate performs static validation of cfg. It does not mutate cfg.
func Validate(cfg Config) Issues {
	var issues Issues
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(cfg.Job.Name) == "" {
		add(SeverityError, "job.name", "job.name must not be empty; it labels metrics")
	}
	validatePredict(cfg.Predict, add)
	validateExport(cfg.Export, add)
	validateStorage(cfg.Storage, add)
	validateMetrics(cfg.Metrics, add)
	requirePath(add, "serve.addr", cfg.Serve.Addr)
	return issues
}

type addFunc func(sev IssueSeverity, path, format string, args ...any)

func requirePath(add addFunc, path, value string) {
	if strings.TrimSpace(value) == "" {
		add(SeverityError, path, "%s must not be empty", path)
	}
}

func validatePredict(p Predict, add addFunc) {
	requirePath(add, "predict.input", p.Input)
	requirePath(add, "predict.output", p.Output)
	requirePath(add, "predict.training_log", p.TrainingLog)
	if p.FromYear > p.ToYear {
		add(SeverityError, "predict.from_year", "from_year %d is after to_year %d", p.FromYear, p.ToYear)
	}
	if p.Epochs <= 0 {
		add(SeverityError, "predict.epochs", "epochs must be positive, got %d", p.Epochs)
	}
	if p.TestSize <= 0 || p.TestSize >= 1 {
		add(SeverityError, "predict.test_size", "test_size must be in (0, 1), got %g", p.TestSize)
	}

	s := p.Search
	if s.MaxEpochs <= 0 {
		add(SeverityError, "predict.search.max_epochs", "max_epochs must be positive, got %d", s.MaxEpochs)
	}
	if s.Factor < 2 {
		add(SeverityError, "predict.search.factor", "factor must be at least 2, got %d", s.Factor)
	}
	if s.Split <= 0 || s.Split >= 1 {
		add(SeverityError, "predict.search.split", "split must be in (0, 1), got %g", s.Split)
	}
	if s.FinalSplit <= 0 || s.FinalSplit >= 1 {
		add(SeverityError, "predict.search.final_split", "final_split must be in (0, 1), got %g", s.FinalSplit)
	}
	if s.Parallelism < 1 {
		add(SeverityWarning, "predict.search.parallelism", "parallelism %d is treated as 1", s.Parallelism)
	}
	if err := s.Space.Validate(); err != nil {
		add(SeverityError, "predict.search.space", "%v", err)
	}
	if s.Train.BatchSize <= 0 {
		add(SeverityError, "predict.search.train.batch_size", "batch_size must be positive, got %d", s.Train.BatchSize)
	}
	if s.Train.Adam.LearningRate <= 0 {
		add(SeverityError, "predict.search.train.adam.learning_rate", "learning_rate must be positive, got %g", s.Train.Adam.LearningRate)
	}
	if p.Epochs > s.MaxEpochs && s.MaxEpochs > 0 {
		add(SeverityWarning, "predict.epochs", "final fit trains %d epochs, longer than any search trial (%d)", p.Epochs, s.MaxEpochs)
	}
}

func validateExport(e Export, add addFunc) {
	d, err := ddl.Lookup(e.Dialect)
	if err != nil {
		add(SeverityError, "export.dialect", "%v", err)
	}
	requirePath(add, "export.tables.countries", e.Tables.Countries)
	requirePath(add, "export.tables.annual", e.Tables.Annual)
	requirePath(add, "export.tables.predictions", e.Tables.Predictions)

	targets := []struct {
		name string
		t    Target
	}{
		{"countries", e.Countries},
		{"annual", e.Annual},
		{"predictions", e.Predictions},
	}
	for _, tc := range targets {
		base := "export." + tc.name
		requirePath(add, base+".input", tc.t.Input)
		requirePath(add, base+".output", tc.t.Output)
		esc, err := sqlgen.ParseEscape(tc.t.Escape)
		if err != nil {
			add(SeverityError, base+".escape", "%v", err)
			continue
		}
		if esc == sqlgen.EscapeBackslash && d.Name != "" && !d.BackslashEscapes {
			add(SeverityWarning, base+".escape", "backslash escaping is not understood by dialect %s; use %q", d.Name, sqlgen.EscapeDouble)
		}
	}
}

func validateStorage(s Storage, add addFunc) {
	if strings.TrimSpace(s.Kind) == "" {
		add(SeverityError, "storage.kind", "storage.kind must not be empty")
	} else if _, err := ddl.Lookup(s.Kind); err != nil {
		add(SeverityError, "storage.kind", "unknown storage kind %q", s.Kind)
	}
	if strings.TrimSpace(s.DSN) == "" {
		add(SeverityWarning, "storage.dsn", "storage.dsn is empty; load and report need a database")
	}
	if s.ConnectTimeout < 0 {
		add(SeverityError, "storage.connect_timeout", "connect_timeout must not be negative")
	}
}

func validateMetrics(m Metrics, add addFunc) {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		requirePath(add, "metrics.pushgateway.url", m.Pushgateway.URL)
	case "datadog":
		requirePath(add, "metrics.datadog.addr", m.Datadog.Addr)
	default:
		add(SeverityError, "metrics.backend", "unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend)
	}
}
