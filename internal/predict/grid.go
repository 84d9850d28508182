// Package predict runs the temperature prediction pipeline: read the wide
// table, encode it, train through a model.Fitter, score the held-out rows,
// and predict every (country, year) of the output range.
package predict

import (
	"fmt"

	"climate/internal/climate"
	"climate/internal/features"
	"climate/internal/model"
)

// Years returns the inclusive range from..to.
func Years(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

// Grid predicts every (code, year) pair, codes outer and years inner. Each pair
// is encoded and predicted on its own.
func Grid(codes []string, years []int, snap features.Snapshot, p model.Predictor) ([]climate.Prediction, error) {
	out := make([]climate.Prediction, 0, len(codes)*len(years))
	for _, code := range codes {
		for _, year := range years {
			v, err := snap.Transform(code, year)
			if err != nil {
				return nil, err
			}
			y, err := p.Predict([][]float64{v})
			if err != nil {
				return nil, fmt.Errorf("predict %s %d: %w", code, year, err)
			}
			if len(y) != 1 {
				return nil, fmt.Errorf("predict %s %d: got %d outputs, want 1", code, year, len(y))
			}
			out = append(out, climate.Prediction{Code: code, Year: year, Temperature: y[0]})
		}
	}
	return out, nil
}
