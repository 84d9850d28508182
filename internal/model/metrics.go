package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// TrainTestSplit shuffles 0..n-1 with seed and returns the train and test
// index sets. The test side holds ceil(testSize*n) rows.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("model: test size must be in (0, 1), got %v", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest == 0 || nTest >= n {
		return nil, nil, fmt.Errorf("%w: %d samples at test size %.2f", ErrTooFewSamples, n, testSize)
	}
	perm := rand.New(rand.NewPCG(seed, 0)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// RSquared returns the coefficient of determination of yhat against y. A
// constant y scores 1 for a perfect fit and 0 otherwise.
func RSquared(y, yhat []float64) (float64, error) {
	if len(y) != len(yhat) || len(y) == 0 {
		return 0, fmt.Errorf("%w: %d targets, %d predictions", ErrShape, len(y), len(yhat))
	}
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i := range y {
		d := y[i] - yhat[i]
		ssRes += d * d
		m := y[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Select returns the rows of features and targets at idx.
func Select(features [][]float64, targets []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, r := range idx {
		xs[i], ys[i] = features[r], targets[r]
	}
	return xs, ys
}
