package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"climate/internal/datasource/file"
	"climate/internal/ddl"
	"climate/internal/metrics"
	"climate/internal/storage"
)

var (
	loadList   string
	loadKind   string
	loadDSN    string
	loadDryRun bool
)

var loadCmd = &cobra.Command{
	Use:   "load [script.sql...]",
	Short: "Apply SQL scripts to the configured database",
	Long: `Applies each script in order, statement by statement, and stops at the first
failing statement. Without arguments the scripts listed in storage.scripts are
applied (countries first, since the prediction table references it).`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadList, "list", "", "file listing scripts, one per line (# comments allowed)")
	loadCmd.Flags().StringVar(&loadKind, "kind", "", "storage kind (overrides storage.kind)")
	loadCmd.Flags().StringVar(&loadDSN, "dsn", "", "database DSN (overrides storage.dsn)")
	loadCmd.Flags().BoolVar(&loadDryRun, "dry-run", false, "split and count statements without connecting")
}

// openStorage opens the configured repository with command-line overrides.
func openStorage(cmd *cobra.Command, kind, dsn string) (storage.Repository, error) {
	sc := cfg.Storage
	sc.Kind = kindOr(kind)
	if dsn != "" {
		sc.DSN = dsn
	}
	if sc.DSN == "" {
		return nil, fmt.Errorf("storage.dsn is empty; set it in the config, CLIMATE_STORAGE_DSN or --dsn")
	}
	return storage.New(cmd.Context(), storage.Config{Kind: sc.Kind, DSN: sc.DSN, ConnectTimeout: sc.ConnectTimeout})
}

func kindOr(kind string) string {
	if kind != "" {
		return kind
	}
	return cfg.Storage.Kind
}

func runLoad(cmd *cobra.Command, args []string) error {
	scripts := args
	if loadList != "" {
		listed, err := file.ReadList(loadList, true)
		if err != nil {
			return fmt.Errorf("read script list: %w", err)
		}
		scripts = append(scripts, listed...)
	}
	if len(scripts) == 0 {
		scripts = cfg.Storage.Scripts
	}
	if len(scripts) == 0 {
		return fmt.Errorf("load: no scripts given")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if loadDryRun {
		d, err := ddl.Lookup(kindOr(loadKind))
		if err != nil {
			return err
		}
		for _, path := range scripts {
			b, err := file.ReadAll(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d statements\n", path, len(storage.SplitStatements(string(b), d.BackslashEscapes)))
		}
		return nil
	}

	repo, err := openStorage(cmd, loadKind, loadDSN)
	if err != nil {
		return err
	}
	defer repo.Close()

	for _, path := range scripts {
		b, err := file.ReadAll(ctx, path)
		if err != nil {
			return err
		}
		var n int
		err = metrics.Step("load", "apply", func() error {
			var err error
			n, err = storage.Apply(ctx, repo, string(b))
			return err
		})
		metrics.RecordRows("load", "statements", n)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		fmt.Fprintf(out, "%s: applied %d statements\n", path, n)
	}
	return nil
}
