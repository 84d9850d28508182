package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate/internal/sqlgen"
	"climate/internal/storage"
	"climate/internal/webui"
)

// resetFlags restores every flag to its default so executions do not leak
// into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()

	var wide strings.Builder
	wide.WriteString("code,name,2010,2011,2012,2013,2014,2015\n")
	for i, c := range []struct{ code, name string }{{"NOR", "Norway"}, {"EGY", "Egypt"}, {"CIV", "Côte d'Ivoire"}} {
		fmt.Fprintf(&wide, "%s,%s", c.code, c.name)
		for y := 0; y < 6; y++ {
			fmt.Fprintf(&wide, ",%g", float64(5+10*i)+0.1*float64(y))
		}
		wide.WriteString("\n")
	}
	official := writeFixture(t, dir, "official.csv", wide.String())
	countries := writeFixture(t, dir, "countries.csv", "NOR,Norway\nEGY,Egypt\nCIV,Côte d'Ivoire\n")
	p := func(name string) string { return filepath.Join(dir, name) }

	cfgFile := writeFixture(t, dir, "climate.yaml", fmt.Sprintf(`
predict:
  input: %q
  output: %q
  training_log: %q
  epochs: 3
  search:
    max_epochs: 3
    space: {min_units: 4, max_units: 8, step: 4, min_layers: 0, max_layers: 1}
export:
  dialect: sqlite
  countries: {input: %q, output: %q}
  annual: {input: %q, output: %q, escape: double}
  predictions: {input: %q, output: %q}
storage:
  kind: sqlite
  dsn: %q
  scripts: [%q, %q, %q]
`, official, p("pred.csv"), p("log.csv"),
		countries, p("countries.sql"),
		official, p("annual.sql"),
		p("pred.csv"), p("pred.sql"),
		p("climate.db"),
		p("countries.sql"), p("annual.sql"), p("pred.sql")))

	out, err := execute(t, "--config", cfgFile, "config", "validate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "configuration is valid")

	out, err = execute(t, "--config", cfgFile, "predict")
	require.NoError(t, err, out)
	assert.Contains(t, out, "wrote 33 predictions")

	logBytes, err := os.ReadFile(p("log.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(logBytes), "epoch,loss,val_loss,R_squared\n"))
	assert.Contains(t, string(logBytes), "\nfinal,")

	out, err = execute(t, "--config", cfgFile, "export", "all")
	require.NoError(t, err, out)
	assert.Contains(t, out, "countries")
	assert.Contains(t, out, "predictions")

	out, err = execute(t, "--config", cfgFile, "load")
	require.NoError(t, err, out)
	assert.Contains(t, out, "pred.sql: applied 3 statements")

	out, err = execute(t, "--config", cfgFile, "report", "Côte d'Ivoire", "--history")
	require.NoError(t, err, out)
	assert.Contains(t, out, "(CIV)")
	assert.Contains(t, out, "2025")

	out, err = execute(t, "--config", cfgFile, "report", "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country not found")

	out, err = execute(t, "--config", cfgFile, "config", "show")
	require.NoError(t, err, out)
	assert.Contains(t, out, "dialect: sqlite")
}

func TestInvalidConfigRejected(t *testing.T) {
	t.Setenv("CLIMATE_PREDICT_EPOCHS", "0")

	_, err := execute(t, "export", "countries")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predict.epochs")
}

type fakeServer struct {
	cfg webui.Config
	err error
}

func (f *fakeServer) ListenAndServe(context.Context) error { return f.err }

func TestServe(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFixture(t, dir, "climate.yaml", fmt.Sprintf(`
storage:
  kind: sqlite
  dsn: %q
report:
  country: Norway
`, filepath.Join(dir, "climate.db")))

	var got *fakeServer
	orig := newServer
	t.Cleanup(func() { newServer = orig })
	newServer = func(cfg webui.Config, _ storage.Repository, _ sqlgen.Tables) server {
		got = &fakeServer{cfg: cfg}
		return got
	}

	out, err := execute(t, "--config", cfgFile, "serve", "--addr", "127.0.0.1:0")
	require.NoError(t, err, out)
	require.NotNil(t, got)
	assert.Equal(t, "127.0.0.1:0", got.cfg.Addr)
	assert.Equal(t, "Norway", got.cfg.DefaultCountry)
	assert.Contains(t, out, "listening on 127.0.0.1:0")

	newServer = func(webui.Config, storage.Repository, sqlgen.Tables) server {
		return &fakeServer{err: errors.New("address in use")}
	}
	_, err = execute(t, "--config", cfgFile, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}
