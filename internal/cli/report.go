package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"climate/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [country name]",
	Short: "Compare predicted and official temperatures for a country",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("history", false, "also print the official series (overrides report.history)")
	reportCmd.Flags().String("kind", "", "storage kind (overrides storage.kind)")
	reportCmd.Flags().String("dsn", "", "database DSN (overrides storage.dsn)")
}

func runReport(cmd *cobra.Command, args []string) error {
	rc := cfg.Report
	if len(args) == 1 {
		rc.Country = args[0]
	}
	overrideBool(cmd.Flags(), "history", &rc.History)
	if rc.Country == "" {
		return errors.New("report: country name required (argument or report.country)")
	}

	kind, _ := cmd.Flags().GetString("kind")
	dsn, _ := cmd.Flags().GetString("dsn")
	repo, err := openStorage(cmd, kind, dsn)
	if err != nil {
		return err
	}
	defer repo.Close()

	cmp, err := report.Compare(cmd.Context(), repo, cfg.Export.Tables, rc.Country)
	if err != nil {
		return err
	}
	if len(cmp.Years) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "no predictions loaded for %s\n", rc.Country)
	}
	return report.Render(cmd.OutOrStdout(), cmp, rc.History)
}
