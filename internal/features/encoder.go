// Package features turns (code, year) pairs into the numeric vectors the model
// consumes: the standardized year followed by a one-hot block over the country
// codes seen at fit time.
package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"climate/internal/climate"
)

// ErrEmpty is returned by Fit when there are no records to learn from.
var ErrEmpty = errors.New("features: fit on empty record set")

// UnknownCategoryError is returned when a code was not present at fit time.
type UnknownCategoryError struct {
	Code string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("features: unknown country code %q", e.Code)
}

// Snapshot is the frozen encoder state. It is a value: copies share the
// read-only category index and are safe for concurrent use.
type Snapshot struct {
	mean  float64
	scale float64
	codes []string
	index map[string]int
}

// Fit computes the year mean and population standard deviation and the sorted
// set of distinct codes of records. A zero deviation scales by 1.
func Fit(records []climate.LongRecord) (Snapshot, error) {
	if len(records) == 0 {
		return Snapshot{}, ErrEmpty
	}
	years := make([]float64, len(records))
	set := make(map[string]struct{})
	for i, r := range records {
		years[i] = float64(r.Year)
		set[r.Code] = struct{}{}
	}
	mean, variance := stat.PopMeanVariance(years, nil)
	scale := math.Sqrt(variance)
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}

	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	index := make(map[string]int, len(codes))
	for i, c := range codes {
		index[c] = i
	}
	return Snapshot{mean: mean, scale: scale, codes: codes, index: index}, nil
}

// Width is the length of every encoded vector: 1 + number of categories.
func (s Snapshot) Width() int { return 1 + len(s.codes) }

// Codes returns the sorted categories (a copy).
func (s Snapshot) Codes() []string { return append([]string(nil), s.codes...) }

// Mean and Scale return the year standardization parameters.
func (s Snapshot) Mean() float64  { return s.mean }
func (s Snapshot) Scale() float64 { return s.scale }

// Transform encodes one (code, year) pair.
func (s Snapshot) Transform(code string, year int) ([]float64, error) {
	pos, ok := s.index[code]
	if !ok {
		return nil, &UnknownCategoryError{Code: code}
	}
	v := make([]float64, s.Width())
	v[0] = (float64(year) - s.mean) / s.scale
	v[1+pos] = 1
	return v, nil
}

// TransformAll encodes a batch, failing on the first unknown code.
func (s Snapshot) TransformAll(records []climate.LongRecord) ([][]float64, error) {
	out := make([][]float64, len(records))
	for i, r := range records {
		v, err := s.Transform(r.Code, r.Year)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
