package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"climate/internal/climate"
	"climate/internal/sqlgen"
	"climate/internal/storage"
)

func openMemory(t *testing.T) (*Repository, func()) {
	t.Helper()
	repo, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	return repo, closeFn
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestSQLiteStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg Config
		closed bool
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite3", DSN: "file:x.db"})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotCfg.DSN != "file:x.db" {
		t.Errorf("hook cfg.DSN = %q", gotCfg.DSN)
	}
	repo.Close()
	if !closed {
		t.Errorf("Close did not call closeFn")
	}
}

func TestApplyGeneratedScripts(t *testing.T) {
	t.Parallel()

	repo, closeFn := openMemory(t)
	defer closeFn()

	ctx := context.Background()
	d := repo.Dialect()
	tables := sqlgen.DefaultTables()

	countries, err := sqlgen.CountryScript(d, tables.Countries, sqlgen.EscapeDouble, []climate.Country{
		{Code: "NOR", Name: "Norway"},
		{Code: "CIV", Name: "Côte d'Ivoire"},
	})
	if err != nil {
		t.Fatal(err)
	}
	annual, err := sqlgen.AnnualScript(d, tables.Annual, sqlgen.EscapeDouble, climate.WideTable{
		Columns: []string{"2019", "2020"},
		Rows: []climate.WideRow{
			{Code: "NOR", Name: "Norway", Values: []*float64{climate.Float(1.5), nil}},
			{Code: "CIV", Name: "Côte d'Ivoire", Values: []*float64{climate.Float(26.25), climate.Float(26.5)}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	preds, err := sqlgen.PredictionScript(d, tables, sqlgen.EscapeDouble, []climate.Prediction{
		{Code: "NOR", Year: 2021, Temperature: 1.75},
		{Code: "CIV", Year: 2021, Temperature: 26.75},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, script := range []string{countries, annual, preds} {
		if _, err := storage.Apply(ctx, repo, script); err != nil {
			t.Fatalf("Apply() error = %v\n%s", err, script)
		}
	}

	res, err := repo.Query(ctx,
		`SELECT c.country_name, p.year, p.predicted_temperature
		 FROM PredictedTemperatures p JOIN CountryInfo c ON c.country_code = p.country_code
		 WHERE c.country_name = ? ORDER BY p.year`, "Côte d'Ivoire")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %#v, want 1", res.Rows)
	}
	if got, _, _ := storage.ScalarFloat(res.Rows[0][2]); got != 26.75 {
		t.Fatalf("predicted = %v, want 26.75", got)
	}

	res, err = repo.Query(ctx, `SELECT "2019", "2020" FROM OfficialAnnualTemperatures WHERE country_code = ?`, "NOR")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0][1] != nil {
		t.Fatalf("annual row = %#v, want NULL 2020", res.Rows)
	}
	if got, ok, _ := storage.ScalarFloat(res.Rows[0][0]); !ok || got != 1.5 {
		t.Fatalf("annual 2019 = %v, want 1.5", got)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, closeFn, err := NewRepository(context.Background(), Config{DSN: filepath.Join(dir, "fk.db")})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	defer closeFn()

	ctx := context.Background()
	d := repo.Dialect()
	tables := sqlgen.DefaultTables()

	countries, _ := sqlgen.CountryScript(d, tables.Countries, sqlgen.EscapeDouble, []climate.Country{{Code: "NOR", Name: "Norway"}})
	preds, _ := sqlgen.PredictionScript(d, tables, sqlgen.EscapeDouble, []climate.Prediction{{Code: "XXX", Year: 2021, Temperature: 1}})

	if _, err := storage.Apply(ctx, repo, countries); err != nil {
		t.Fatalf("Apply(countries) error = %v", err)
	}
	_, err = storage.Apply(ctx, repo, preds)
	var se *storage.StatementError
	if !errors.As(err, &se) {
		t.Fatalf("Apply(predictions) error = %v, want *StatementError", err)
	}
}
