package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"climate/internal/config"
	"climate/internal/ddl"
	"climate/internal/export"
	"climate/internal/sqlgen"
)

var exportDialect string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render CSV files as SQL scripts",
	Long: `Converts a CSV file into a self-contained SQL script (DROP, CREATE, INSERT).
No database connection is made; use "climate load" to apply the scripts.`,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.PersistentFlags().StringVar(&exportDialect, "dialect", "", "SQL dialect: mysql, postgres, sqlserver or sqlite (overrides export.dialect)")

	for _, kind := range export.Kinds {
		kind := kind
		c := &cobra.Command{
			Use:   kind,
			Short: "Export the " + kind + " script",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				opts, err := exportOptions(cfg.Export, cmd)
				if err != nil {
					return err
				}
				res, err := export.Run(cmd.Context(), kind, opts)
				if err != nil {
					return err
				}
				printExport(cmd, res)
				return nil
			},
		}
		c.Flags().String("input", "", "input CSV, path or URL")
		c.Flags().String("output", "", "output SQL script")
		c.Flags().String("escape", "", "quote escaping: double or backslash")
		exportCmd.AddCommand(c)
	}

	exportCmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Export countries, annual and predictions in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := exportOptions(cfg.Export, cmd)
			if err != nil {
				return err
			}
			results, err := export.All(cmd.Context(), opts)
			for _, res := range results {
				printExport(cmd, res)
			}
			return err
		},
	})
}

// exportOptions resolves the configured dialect and escapes. Per-kind flags
// apply to the kind of the running command.
func exportOptions(e config.Export, cmd *cobra.Command) (export.Options, error) {
	if exportDialect != "" {
		e.Dialect = exportDialect
	}
	d, err := ddl.Lookup(e.Dialect)
	if err != nil {
		return export.Options{}, err
	}

	targets := map[string]*config.Target{
		export.KindCountries:   &e.Countries,
		export.KindAnnual:      &e.Annual,
		export.KindPredictions: &e.Predictions,
	}
	if t, ok := targets[cmd.Name()]; ok {
		f := cmd.Flags()
		overrideString(f, "input", &t.Input)
		overrideString(f, "output", &t.Output)
		overrideString(f, "escape", &t.Escape)
	}

	opts := export.Options{Dialect: d, Tables: e.Tables, HTTP: cfg.Job.HTTP}
	for kind, dst := range map[string]*export.Target{
		export.KindCountries:   &opts.Countries,
		export.KindAnnual:      &opts.Annual,
		export.KindPredictions: &opts.Predictions,
	} {
		t := targets[kind]
		esc, err := sqlgen.ParseEscape(t.Escape)
		if err != nil {
			return export.Options{}, fmt.Errorf("export.%s.escape: %w", kind, err)
		}
		*dst = export.Target{Input: t.Input, Output: t.Output, Escape: esc}
	}
	return opts, nil
}

func printExport(cmd *cobra.Command, res export.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "%-12s rows=%-6d %s (xxh3 %s)\n", res.Kind, res.Rows, res.Output, res.Fingerprint)
}
