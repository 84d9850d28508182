package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"climate/internal/sqlgen"
	"climate/internal/storage"
	"climate/internal/webui"
)

// server is the part of webui.Server the command drives.
type server interface {
	ListenAndServe(ctx context.Context) error
}

// newServer is replaced in tests.
var newServer = func(cfg webui.Config, repo storage.Repository, tables sqlgen.Tables) server {
	return webui.NewServer(cfg, repo, tables)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the predicted vs official comparison page",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides serve.addr)")
	serveCmd.Flags().String("country", "", "country shown when none is requested (overrides report.country)")
	serveCmd.Flags().String("kind", "", "storage kind (overrides storage.kind)")
	serveCmd.Flags().String("dsn", "", "database DSN (overrides storage.dsn)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	wc := webui.Config{Addr: cfg.Serve.Addr, DefaultCountry: cfg.Report.Country}
	overrideString(cmd.Flags(), "addr", &wc.Addr)
	overrideString(cmd.Flags(), "country", &wc.DefaultCountry)

	kind, _ := cmd.Flags().GetString("kind")
	dsn, _ := cmd.Flags().GetString("dsn")
	repo, err := openStorage(cmd, kind, dsn)
	if err != nil {
		return err
	}
	defer repo.Close()

	log.Printf("serve: listening addr=%s kind=%s", wc.Addr, repo.Dialect().Name)
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", wc.Addr)
	if err := newServer(wc, repo, cfg.Export.Tables).ListenAndServe(cmd.Context()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
