package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"climate/internal/predict"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Train the model and write predicted temperatures",
	Long: `Reads the wide official CSV, searches for a network architecture, trains it,
scores it on a held-out split, writes the predicted grid CSV and appends the
training log.`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	f := predictCmd.Flags()
	f.String("input", "", "wide temperature CSV, path or URL (overrides predict.input)")
	f.String("output", "", "predicted CSV path (overrides predict.output)")
	f.String("training-log", "", "training log CSV (overrides predict.training_log)")
	f.Int("epochs", 0, "final fit epochs (overrides predict.epochs)")
	f.Int("from-year", 0, "first predicted year (overrides predict.from_year)")
	f.Int("to-year", 0, "last predicted year (overrides predict.to_year)")
	f.Int("parallelism", 0, "concurrently training search trials (overrides predict.search.parallelism)")
}

func runPredict(cmd *cobra.Command, args []string) error {
	p := cfg.Predict
	f := cmd.Flags()
	overrideString(f, "input", &p.Input)
	overrideString(f, "output", &p.Output)
	overrideString(f, "training-log", &p.TrainingLog)
	overrideInt(f, "epochs", &p.Epochs)
	overrideInt(f, "from-year", &p.FromYear)
	overrideInt(f, "to-year", &p.ToYear)
	overrideInt(f, "parallelism", &p.Search.Parallelism)
	if p.FromYear > p.ToYear {
		return fmt.Errorf("predict: from-year %d is after to-year %d", p.FromYear, p.ToYear)
	}

	pipe := &predict.Pipeline{
		Opts: predict.Options{
			Input:       p.Input,
			Output:      p.Output,
			TrainingLog: p.TrainingLog,
			FromYear:    p.FromYear,
			ToYear:      p.ToYear,
			Epochs:      p.Epochs,
			TestSize:    p.TestSize,
			SplitSeed:   p.SplitSeed,
			HTTP:        cfg.Job.HTTP,
		},
		Fitter: p.Search.Hyperband(),
	}
	sum, err := pipe.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "records=%d observed=%d train=%d test=%d\n", sum.Records, sum.Observed, sum.Train, sum.Test)
	fmt.Fprintf(out, "loss=%.6g val_loss=%.6g r_squared=%.4f\n", sum.Loss, sum.ValLoss, sum.RSquared)
	fmt.Fprintf(out, "wrote %d predictions to %s; appended %s\n", sum.Predictions, p.Output, p.TrainingLog)
	return nil
}
