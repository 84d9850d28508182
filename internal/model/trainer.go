package model

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
)

// TrainOptions are the settings shared by search trials and the final fit.
type TrainOptions struct {
	BatchSize int        `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size"`
	Adam      AdamConfig `mapstructure:"adam" json:"adam" yaml:"adam"`
}

// DefaultTrainOptions returns batch size 32 with DefaultAdam.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{BatchSize: 32, Adam: DefaultAdam()}
}

// session is a network with its optimizer and shuffling RNG. Survivors of a
// search rung keep their session and continue training.
type session struct {
	net    *Network
	opt    *adam
	rng    *rand.Rand
	batch  int
	epochs int
}

func newSession(arch Architecture, inputs int, opts TrainOptions, rng *rand.Rand) *session {
	net := NewNetwork(arch, inputs, rng)
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 32
	}
	return &session{net: net, opt: newAdam(opts.Adam, net), rng: rng, batch: batch}
}

// epoch trains one shuffled pass over rows and returns the sample-weighted mean
// batch loss.
func (s *session) epoch(ctx context.Context, features [][]float64, targets []float64, rows []int) (float64, error) {
	perm := append([]int(nil), rows...)
	s.rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	total := 0.0
	y := make([]float64, 0, s.batch)
	for start := 0; start < len(perm); start += s.batch {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		idx := perm[start:min(start+s.batch, len(perm))]
		x, err := matrix(features, idx, s.net.inputs)
		if err != nil {
			return 0, err
		}
		y = y[:0]
		for _, r := range idx {
			y = append(y, targets[r])
		}
		total += s.net.step(x, y) * float64(len(idx))
		s.opt.update()
	}
	s.epochs++
	loss := total / float64(len(perm))
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, fmt.Errorf("model: training diverged at epoch %d", s.epochs)
	}
	return loss, nil
}

// holdout splits rows so the last fraction becomes validation data, flooring
// the training share. Both sides must be non-empty.
func holdout(rows []int, fraction float64) (train, val []int, err error) {
	at := int(math.Floor(float64(len(rows)) * (1 - fraction)))
	if at <= 0 || at >= len(rows) {
		return nil, nil, fmt.Errorf("%w: %d samples at split %.2f", ErrTooFewSamples, len(rows), fraction)
	}
	return rows[:at], rows[at:], nil
}

func checkInputs(features [][]float64, targets []float64) (int, error) {
	if len(features) == 0 {
		return 0, ErrTooFewSamples
	}
	if len(features) != len(targets) {
		return 0, fmt.Errorf("%w: %d feature rows, %d targets", ErrShape, len(features), len(targets))
	}
	return len(features[0]), nil
}

// MLP is a Fitter that trains one fixed architecture.
type MLP struct {
	Arch Architecture
	// ValidationSplit is the trailing fraction of the data held out for the
	// per-epoch validation loss.
	ValidationSplit float64
	Train           TrainOptions
	Seed            uint64
}

// Fit trains a fresh network for budget.Epochs epochs.
func (m MLP) Fit(ctx context.Context, features [][]float64, targets []float64, budget Budget) (Predictor, error) {
	width, err := checkInputs(features, targets)
	if err != nil {
		return nil, err
	}
	train, val, err := holdout(seq(0, len(features)), m.ValidationSplit)
	if err != nil {
		return nil, err
	}
	s := newSession(m.Arch, width, m.Train, rand.New(rand.NewPCG(m.Seed, 0)))
	for e := 1; e <= budget.Epochs; e++ {
		loss, err := s.epoch(ctx, features, targets, train)
		if err != nil {
			return nil, err
		}
		valLoss, err := s.net.mse(features, targets, val)
		if err != nil {
			return nil, err
		}
		if budget.OnEpoch != nil {
			budget.OnEpoch(e, loss, valLoss)
		}
	}
	return s.net, nil
}
