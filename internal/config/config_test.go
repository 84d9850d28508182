package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestDefault_FixedFileNames(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Predict.Input != "official_climate_data.csv" || cfg.Predict.Output != "predicted_temperatures_2015_2026.csv" {
		t.Fatalf("predict paths = %q, %q", cfg.Predict.Input, cfg.Predict.Output)
	}
	if cfg.Predict.FromYear != 2015 || cfg.Predict.ToYear != 2025 {
		t.Fatalf("years = %d..%d", cfg.Predict.FromYear, cfg.Predict.ToYear)
	}
	if cfg.Export.Countries.Input != "countries and codes.csv" {
		t.Fatalf("countries input = %q", cfg.Export.Countries.Input)
	}
	if cfg.Export.Annual.Escape != "backslash" || cfg.Export.Countries.Escape != "double" {
		t.Fatalf("escapes = %q, %q", cfg.Export.Annual.Escape, cfg.Export.Countries.Escape)
	}
	want := []string{"country_info_full.sql", "official_annual_temperatures.sql", "predicted_temperatures_full.sql"}
	if !reflect.DeepEqual(cfg.Storage.Scripts, want) {
		t.Fatalf("scripts = %v, want %v", cfg.Storage.Scripts, want)
	}
	if err := Validate(cfg).Err(); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "climate.yaml", `
predict:
  epochs: 7
  search:
    space:
      max_units: 64
export:
  dialect: postgres
storage:
  kind: postgres
  connect_timeout: 3s
  scripts: [one.sql]
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Predict.Epochs != 7 {
		t.Errorf("epochs = %d, want 7", cfg.Predict.Epochs)
	}
	if cfg.Predict.Search.Space.MaxUnits != 64 || cfg.Predict.Search.Space.MinUnits != 32 {
		t.Errorf("space = %+v, want max 64 and default min", cfg.Predict.Search.Space)
	}
	if cfg.Predict.Input != "official_climate_data.csv" {
		t.Errorf("unset field lost its default: %q", cfg.Predict.Input)
	}
	if cfg.Export.Dialect != "postgres" || cfg.Storage.ConnectTimeout != 3*time.Second {
		t.Errorf("export/storage = %q, %v", cfg.Export.Dialect, cfg.Storage.ConnectTimeout)
	}
	if !reflect.DeepEqual(cfg.Storage.Scripts, []string{"one.sql"}) {
		t.Errorf("scripts = %v, want [one.sql]", cfg.Storage.Scripts)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeTemp(t, "climate.json", `{"report": {"country": "Norway", "history": true}, "predict": {"split_seed": 7}}`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Report.Country != "Norway" || !cfg.Report.History || cfg.Predict.SplitSeed != 7 {
		t.Fatalf("report = %+v, seed = %d", cfg.Report, cfg.Predict.SplitSeed)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTemp(t, "climate.yaml", "predict:\n  epochs: 7\n")
	t.Setenv("CLIMATE_PREDICT_EPOCHS", "11")
	t.Setenv("CLIMATE_PREDICT_TEST_SIZE", "0.25")
	t.Setenv("CLIMATE_METRICS_DATADOG_TAGS", "env:ci,team:climate")
	t.Setenv("CLIMATE_JOB_HTTP_TIMEOUT", "2s")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Predict.Epochs != 11 || cfg.Predict.TestSize != 0.25 {
		t.Errorf("predict = %d, %g", cfg.Predict.Epochs, cfg.Predict.TestSize)
	}
	if !reflect.DeepEqual(cfg.Metrics.Datadog.Tags, []string{"env:ci", "team:climate"}) {
		t.Errorf("tags = %v", cfg.Metrics.Datadog.Tags)
	}
	if cfg.Job.HTTP.Timeout != 2*time.Second {
		t.Errorf("http timeout = %v", cfg.Job.HTTP.Timeout)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeTemp(t, "test.env", "CLIMATE_STORAGE_DSN=file:climate.db\nCLIMATE_STORAGE_KIND=sqlite\n")
	t.Setenv("CLIMATE_STORAGE_KIND", "postgres")
	t.Cleanup(func() { os.Unsetenv("CLIMATE_STORAGE_DSN") })

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.DSN != "file:climate.db" {
		t.Errorf("dsn = %q", cfg.Storage.DSN)
	}
	if cfg.Storage.Kind != "postgres" {
		t.Errorf("kind = %q; the process environment should win", cfg.Storage.Kind)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "none.yaml"), "read"},
		{"bad extension", writeTemp(t, "climate.toml", "x = 1"), "unsupported extension"},
		{"bad yaml", writeTemp(t, "bad.yaml", "predict: [\n"), "parse"},
		{"unknown key", writeTemp(t, "typo.yaml", "predict:\n  epochz: 1\n"), "epochz"},
		{"wrong type", writeTemp(t, "type.yaml", "predict:\n  epochs: many\n"), "epochs"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLeafKeysAndEnvName(t *testing.T) {
	t.Parallel()

	keys := map[string]bool{}
	for _, k := range LeafKeys() {
		keys[k] = true
	}
	for _, k := range []string{"predict.epochs", "predict.search.space.max_units", "job.http.timeout", "storage.scripts", "export.annual.escape"} {
		if !keys[k] {
			t.Errorf("LeafKeys() missing %q", k)
		}
	}
	if keys["job.http.transport"] {
		t.Errorf("LeafKeys() includes skipped field transport")
	}
	if got := EnvName("predict.search.max_epochs"); got != "CLIMATE_PREDICT_SEARCH_MAX_EPOCHS" {
		t.Errorf("EnvName() = %q", got)
	}
}

func TestApplyEnv_NoLookupHits(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"predict": map[string]any{"epochs": 3}}
	applyEnv(raw, func(string) (string, bool) { return "", false })
	if !reflect.DeepEqual(raw, map[string]any{"predict": map[string]any{"epochs": 3}}) {
		t.Fatalf("raw changed: %v", raw)
	}
}
