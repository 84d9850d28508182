// Package report reads the loaded tables back and compares predicted with
// official temperatures for a single country.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"climate/internal/climate"
	"climate/internal/sqlgen"
	"climate/internal/storage"
)

// ErrCountryNotFound is returned when no reference row has the requested name.
var ErrCountryNotFound = errors.New("report: country not found")

// YearRow is one predicted year. Official is nil when the official table has no
// value (or no column) for that year.
type YearRow struct {
	Year      int
	Predicted float64
	Official  *float64
}

// Observation is one value column of the official table.
type Observation struct {
	Column string
	Year   int
	Value  *float64
}

// Comparison is the report for one country.
type Comparison struct {
	Code    string
	Name    string
	Years   []YearRow
	History []Observation
}

// Compare looks up countryName in the reference table, then reads its
// predictions (ordered by year) and its official row.
func Compare(ctx context.Context, repo storage.Repository, tables sqlgen.Tables, countryName string) (Comparison, error) {
	d := repo.Dialect()
	cmp := Comparison{Name: countryName}

	res, err := repo.Query(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", sqlgen.ColCode, tables.Countries, sqlgen.ColName, d.Placeholder(1)),
		countryName)
	if err != nil {
		return cmp, fmt.Errorf("report: lookup %q: %w", countryName, err)
	}
	if len(res.Rows) == 0 {
		return cmp, fmt.Errorf("%w: %q", ErrCountryNotFound, countryName)
	}
	cmp.Code = fmt.Sprint(res.Rows[0][0])

	if cmp.History, err = history(ctx, repo, tables.Annual, cmp.Code); err != nil {
		return cmp, err
	}
	official := make(map[int]*float64, len(cmp.History))
	for _, o := range cmp.History {
		if _, seen := official[o.Year]; !seen || official[o.Year] == nil {
			official[o.Year] = o.Value
		}
	}

	res, err = repo.Query(ctx,
		fmt.Sprintf("SELECT p.%s, p.%s FROM %s p JOIN %s c ON c.%s = p.%s WHERE c.%s = %s ORDER BY p.%s",
			sqlgen.ColYear, sqlgen.ColPredicted,
			tables.Predictions, tables.Countries,
			sqlgen.ColCode, sqlgen.ColCode,
			sqlgen.ColName, d.Placeholder(1),
			sqlgen.ColYear),
		countryName)
	if err != nil {
		return cmp, fmt.Errorf("report: predictions for %q: %w", countryName, err)
	}
	for i, row := range res.Rows {
		year, ok, err := storage.ScalarFloat(row[0])
		if err != nil || !ok {
			return cmp, fmt.Errorf("report: predictions row %d: bad year %v", i+1, row[0])
		}
		pred, ok, err := storage.ScalarFloat(row[1])
		if err != nil || !ok {
			return cmp, fmt.Errorf("report: predictions row %d: bad temperature %v", i+1, row[1])
		}
		cmp.Years = append(cmp.Years, YearRow{Year: int(year), Predicted: pred, Official: official[int(year)]})
	}
	return cmp, nil
}

// history reads every value column of the official row for code, in column
// order. A country missing from the official table has no history.
func history(ctx context.Context, repo storage.Repository, table, code string) ([]Observation, error) {
	res, err := repo.Query(ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", table, sqlgen.ColCode, repo.Dialect().Placeholder(1)),
		code)
	if err != nil {
		return nil, fmt.Errorf("report: official row for %s: %w", code, err)
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}

	row := res.Rows[0]
	var out []Observation
	for i, col := range res.Columns {
		switch strings.ToLower(col) {
		case "id", sqlgen.ColCode, sqlgen.ColName:
			continue
		}
		year, err := climate.YearOf(col)
		if err != nil {
			continue
		}
		v, ok, err := storage.ScalarFloat(row[i])
		if err != nil {
			return nil, fmt.Errorf("report: official %s: %w", col, err)
		}
		o := Observation{Column: col, Year: year}
		if ok {
			o.Value = climate.Float(v)
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}
