// Package cli implements the climate command line: one cobra command per
// pipeline, all sharing the configuration loaded by the root command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"climate/internal/config"
	"climate/internal/metrics"
	"climate/internal/metrics/datadog"
	"climate/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "climate/internal/storage/all"
)

// skipValidation marks commands that inspect the configuration themselves.
const skipValidation = "climate/skip-validation"

var (
	cfgPath        string
	envFile        string
	verbose        bool
	metricsBackend string

	// cfg is loaded by the root command before any subcommand runs.
	cfg   config.Config
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "climate",
	Short: "Temperature prediction and CSV to SQL exporters",
	Long: `climate trains a temperature model on official national data, writes the
predicted grid, and converts the CSV files into SQL scripts.

Commands:
  - predict: search, train and write predicted temperatures
  - export:  render country, annual and prediction SQL scripts
  - load:    apply SQL scripts to a database
  - report:  compare predicted and official temperatures for a country
  - config:  validate or print the effective configuration`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush failed: %v", err)
		}
		return nil
	},
}

// Execute runs the root command. An interrupt cancels the running pipeline.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before CLIMATE_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logs")
	rootCmd.PersistentFlags().StringVar(&metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides metrics.backend)")
}

func setup(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	if !verbose {
		log.SetOutput(io.Discard)
	}

	var err error
	if cfg, err = config.Load(cfgPath, envFile); err != nil {
		return err
	}
	if metricsBackend != "" {
		cfg.Metrics.Backend = metricsBackend
	}
	if _, ok := cmd.Annotations[skipValidation]; ok {
		return nil
	}

	issues := config.Validate(cfg)
	for _, iss := range issues.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", iss.Path, iss.Message)
	}
	if err := issues.Err(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	runID = uuid.NewString()
	b, err := newMetricsBackend(cfg, runID)
	if err != nil {
		return err
	}
	metrics.SetBackend(b)
	log.Printf("climate: command=%s run_id=%s metrics=%s", cmd.CommandPath(), runID, cfg.Metrics.Backend)
	return nil
}

func newMetricsBackend(c config.Config, runID string) (metrics.Backend, error) {
	switch c.Metrics.Backend {
	case "", "none":
		return nil, nil
	case "pushgateway":
		return prompush.NewBackend(prompush.Config{
			GatewayURL: c.Metrics.Pushgateway.URL,
			Job:        c.Job.Name,
			RunID:      runID,
		})
	case "datadog":
		return datadog.NewBackend(datadog.Config{
			Addr:      c.Metrics.Datadog.Addr,
			Namespace: c.Metrics.Datadog.Namespace,
			Tags:      c.Metrics.Datadog.Tags,
			RunID:     runID,
		})
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", c.Metrics.Backend)
	}
}
