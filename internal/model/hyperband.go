package model

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Hyperband searches Space with successive-halving brackets and then fits the
// best architecture. It implements Fitter.
type Hyperband struct {
	Space Space
	Train TrainOptions

	// MaxEpochs is the most epochs any single trial trains for.
	MaxEpochs int
	// Factor is the reduction factor between rungs.
	Factor int
	// SearchSplit is the validation fraction used to score trials.
	SearchSplit float64
	// FinalSplit is the validation fraction of the final fit.
	FinalSplit float64
	// Parallelism bounds concurrently training trials (<= 0 means 1).
	Parallelism int
	Seed        uint64
}

// DefaultHyperband is 100 epochs, factor 3,
// 0.4 search split and 0.2 final split.
func DefaultHyperband() Hyperband {
	return Hyperband{
		Space:       DefaultSpace(),
		Train:       DefaultTrainOptions(),
		MaxEpochs:   100,
		Factor:      3,
		SearchSplit: 0.4,
		FinalSplit:  0.2,
		Parallelism: 1,
		Seed:        42,
	}
}

// Result summarizes a finished search.
type Result struct {
	Best     Architecture
	BestLoss float64
	Trials   int
}

type trial struct {
	id   int
	arch Architecture
	sess *session
	best float64
}

// sMax returns s_max = floor(log_factor(MaxEpochs)).
func (h Hyperband) sMax() int {
	s := math.Log(float64(h.MaxEpochs)) / math.Log(float64(h.Factor))
	return int(math.Floor(s + 1e-9))
}

func (h Hyperband) validate() error {
	if h.MaxEpochs < 1 {
		return fmt.Errorf("model: max epochs must be >= 1, got %d", h.MaxEpochs)
	}
	if h.Factor < 2 {
		return fmt.Errorf("model: reduction factor must be >= 2, got %d", h.Factor)
	}
	return h.Space.Validate()
}

// Search runs every bracket and returns the architecture with the lowest
// validation loss seen by any trial. Features are shuffled with Seed before the
// SearchSplit holdout is taken.
func (h Hyperband) Search(ctx context.Context, features [][]float64, targets []float64) (Result, error) {
	if err := h.validate(); err != nil {
		return Result{}, err
	}
	width, err := checkInputs(features, targets)
	if err != nil {
		return Result{}, err
	}
	rows := seq(0, len(features))
	rand.New(rand.NewPCG(h.Seed, math.MaxUint64)).Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	train, val, err := holdout(rows, h.SearchSplit)
	if err != nil {
		return Result{}, err
	}

	sampler := rand.New(rand.NewPCG(h.Seed, 0))
	res := Result{BestLoss: math.Inf(1)}
	f := float64(h.Factor)
	sMax := h.sMax()
	for s := sMax; s >= 0; s-- {
		n := int(math.Ceil(float64(sMax+1) / float64(s+1) * math.Pow(f, float64(s))))
		r := float64(h.MaxEpochs) * math.Pow(f, -float64(s))

		trials := make([]*trial, n)
		for i := range trials {
			id := res.Trials + i
			trials[i] = &trial{
				id:   id,
				arch: h.Space.Sample(sampler),
				best: math.Inf(1),
			}
			trials[i].sess = newSession(trials[i].arch, width, h.Train, rand.New(rand.NewPCG(h.Seed, uint64(id)+1)))
		}
		res.Trials += n

		for i := 0; i <= s; i++ {
			epochs := int(math.Round(r * math.Pow(f, float64(i))))
			epochs = max(1, min(epochs, h.MaxEpochs))
			start := time.Now()
			if err := h.rung(ctx, trials, epochs, features, targets, train, val); err != nil {
				return Result{}, err
			}
			sort.SliceStable(trials, func(a, b int) bool { return trials[a].best < trials[b].best })
			if trials[0].best < res.BestLoss {
				res.Best, res.BestLoss = trials[0].arch, trials[0].best
			}
			log.Printf("search: bracket=%d rung=%d trials=%d epochs=%d best_val_loss=%.6g elapsed=%s",
				s, i, len(trials), epochs, trials[0].best, time.Since(start).Round(time.Millisecond))
			if i < s {
				trials = trials[:max(1, len(trials)/h.Factor)]
			}
		}
	}
	return res, nil
}

// rung trains every trial up to epochs, tracking each trial's best val loss.
func (h Hyperband) rung(ctx context.Context, trials []*trial, epochs int, features [][]float64, targets []float64, train, val []int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, h.Parallelism))
	for _, t := range trials {
		t := t
		g.Go(func() error {
			for t.sess.epochs < epochs {
				if _, err := t.sess.epoch(ctx, features, targets, train); err != nil {
					return fmt.Errorf("trial %d (%s): %w", t.id, t.arch, err)
				}
				v, err := t.sess.net.mse(features, targets, val)
				if err != nil {
					return err
				}
				t.best = math.Min(t.best, v)
			}
			return nil
		})
	}
	return g.Wait()
}

// Fit searches for the best architecture and trains it afresh for
// budget.Epochs with FinalSplit held out.
func (h Hyperband) Fit(ctx context.Context, features [][]float64, targets []float64, budget Budget) (Predictor, error) {
	res, err := h.Search(ctx, features, targets)
	if err != nil {
		return nil, fmt.Errorf("hyperparameter search: %w", err)
	}
	log.Printf("search: done trials=%d best=%s val_loss=%.6g", res.Trials, res.Best, res.BestLoss)
	final := MLP{
		Arch:            res.Best,
		ValidationSplit: h.FinalSplit,
		Train:           h.Train,
		Seed:            h.Seed,
	}
	p, err := final.Fit(ctx, features, targets, budget)
	if err != nil {
		return nil, fmt.Errorf("final fit: %w", err)
	}
	return p, nil
}
