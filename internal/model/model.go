// Package model trains the temperature regressor: a small multilayer
// perceptron fitted with Adam on mean squared error, and a Hyperband search
// over its layer widths. Callers only see the Fitter and Predictor interfaces.
package model

import (
	"context"
	"errors"
)

// Fitter trains a model from encoded features and targets. A Fit call is
// all-or-nothing: on error no predictor is returned.
type Fitter interface {
	Fit(ctx context.Context, features [][]float64, targets []float64, budget Budget) (Predictor, error)
}

// Predictor maps feature vectors to scalar temperatures.
type Predictor interface {
	Predict(features [][]float64) ([]float64, error)
}

// Budget bounds a final fit and observes its progress.
type Budget struct {
	// Epochs is the number of passes over the training data.
	Epochs int

	// OnEpoch, when set, is called after every epoch with the 1-based epoch
	// number, the mean training loss, and the validation loss.
	OnEpoch func(epoch int, loss, valLoss float64)
}

var (
	// ErrTooFewSamples is returned when a validation split leaves either side
	// empty.
	ErrTooFewSamples = errors.New("model: too few samples for validation split")

	// ErrShape is returned for ragged or mismatched feature/target inputs.
	ErrShape = errors.New("model: feature shape mismatch")
)
