package predict

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"climate/internal/climate"
	"climate/internal/datasource"
	"climate/internal/datasource/file"
	"climate/internal/datasource/httpds"
	"climate/internal/features"
	"climate/internal/metrics"
	"climate/internal/model"
)

const job = "predict"

// Options configures one prediction run.
type Options struct {
	// Input is the wide temperature CSV (path or URL).
	Input string
	// Output is the predicted-temperature CSV, replaced on success.
	Output string
	// TrainingLog is appended to on success.
	TrainingLog string

	FromYear int
	ToYear   int

	// Epochs of the final fit.
	Epochs int
	// TestSize is the held-out fraction used for the R² score.
	TestSize  float64
	SplitSeed uint64

	HTTP httpds.Config
}

// Summary reports what a run produced.
type Summary struct {
	Records     int
	Observed    int
	Train       int
	Test        int
	Predictions int
	Loss        float64
	ValLoss     float64
	RSquared    float64
}

// Pipeline wires the prediction steps to a Fitter.
type Pipeline struct {
	Opts   Options
	Fitter model.Fitter
}

// Run executes the pipeline. Both outputs are built in memory and only written
// after every step succeeded.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var (
		sum     Summary
		records []climate.LongRecord
		snap    features.Snapshot
		xs      [][]float64
		ys      []float64
		trainIx []int
		testIx  []int
		pred    model.Predictor
		tlog    TrainLog
		grid    []climate.Prediction
	)
	if p.Fitter == nil {
		return sum, errors.New("predict: no fitter configured")
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"read", func() error {
			raw, err := datasource.ReadAll(ctx, datasource.For(p.Opts.Input, p.Opts.HTTP))
			if err != nil {
				return err
			}
			wide, err := climate.ReadWide(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", p.Opts.Input, err)
			}
			records, err = climate.Melt(wide)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Opts.Input, err)
			}
			log.Printf("predict: read input=%s countries=%d columns=%d records=%d", p.Opts.Input, len(wide.Rows), len(wide.Columns), len(records))
			return nil
		}},
		{"encode", func() error {
			var err error
			if snap, err = features.Fit(records); err != nil {
				return err
			}
			observed := climate.Observed(records)
			if xs, err = snap.TransformAll(observed); err != nil {
				return err
			}
			ys = make([]float64, len(observed))
			for i, r := range observed {
				ys[i] = *r.Temperature
			}
			sum.Records, sum.Observed = len(records), len(observed)
			metrics.RecordRows(job, "records", len(records))
			metrics.RecordRows(job, "missing", len(records)-len(observed))
			return nil
		}},
		{"split", func() error {
			var err error
			trainIx, testIx, err = model.TrainTestSplit(len(xs), p.Opts.TestSize, p.Opts.SplitSeed)
			sum.Train, sum.Test = len(trainIx), len(testIx)
			return err
		}},
		{"train", func() error {
			trainX, trainY := model.Select(xs, ys, trainIx)
			var err error
			pred, err = p.Fitter.Fit(ctx, trainX, trainY, model.Budget{Epochs: p.Opts.Epochs, OnEpoch: tlog.Observe})
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			last, ok := tlog.Last()
			if !ok {
				return errors.New("train: fitter reported no epochs")
			}
			sum.Loss, sum.ValLoss = last.Loss, last.ValLoss
			return nil
		}},
		{"score", func() error {
			testX, testY := model.Select(xs, ys, testIx)
			yhat, err := pred.Predict(testX)
			if err != nil {
				return fmt.Errorf("score: %w", err)
			}
			sum.RSquared, err = model.RSquared(testY, yhat)
			return err
		}},
		{"grid", func() error {
			var err error
			grid, err = Grid(climate.DistinctCodes(records), Years(p.Opts.FromYear, p.Opts.ToYear), snap, pred)
			sum.Predictions = len(grid)
			metrics.RecordRows(job, "predicted", len(grid))
			return err
		}},
		{"write", func() error {
			return p.write(ctx, &tlog, sum.RSquared, grid)
		}},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		start := time.Now()
		err := s.fn()
		metrics.RecordStep(job, s.name, err, time.Since(start))
		if err != nil {
			return sum, err
		}
	}

	metrics.RecordModel(job, "loss", sum.Loss)
	metrics.RecordModel(job, "val_loss", sum.ValLoss)
	metrics.RecordModel(job, "r_squared", sum.RSquared)
	log.Printf("predict: done loss=%.6g val_loss=%.6g r_squared=%.4f predictions=%d", sum.Loss, sum.ValLoss, sum.RSquared, sum.Predictions)
	return sum, nil
}

func (p *Pipeline) write(ctx context.Context, tlog *TrainLog, r2 float64, grid []climate.Prediction) error {
	csvBytes, err := climate.EncodePredictions(grid)
	if err != nil {
		return err
	}

	// Neither output is left behind unless both can be written.
	w, fresh, err := file.OpenAppend(ctx, p.Opts.TrainingLog)
	if err != nil {
		return err
	}
	logBytes, err := tlog.Encode(fresh, r2)
	if err == nil {
		err = file.WriteAll(ctx, p.Opts.Output, csvBytes)
	}
	if err != nil {
		w.Close()
		if fresh {
			os.Remove(p.Opts.TrainingLog)
		}
		return err
	}
	log.Printf("predict: wrote output=%s size=%s", p.Opts.Output, humanize.Bytes(uint64(len(csvBytes))))

	_, err = w.Write(logBytes)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("append %s: %w", p.Opts.TrainingLog, err)
	}
	log.Printf("predict: appended training_log=%s rows=%d", p.Opts.TrainingLog, len(tlog.Epochs)+1)
	return nil
}
