// Package climate holds the temperature data model shared by the prediction
// pipeline and the SQL exporters: the wide per-country table, its long
// (code, year, temperature) form, country references and predictions.
package climate

// Column names of the wide CSV that identify a country. Every other column is
// a value column whose header starts with a four-digit year.
const (
	CodeColumn = "code"
	NameColumn = "name"
)

// WideTable is one row per country and one value column per period. Columns
// holds the value-column headers verbatim (e.g. "1950-07").
type WideTable struct {
	Columns []string
	Rows    []WideRow
}

// WideRow is a single country. len(Values) == len(WideTable.Columns); a nil
// entry is a missing cell.
type WideRow struct {
	Code   string
	Name   string
	Values []*float64
}

// LongRecord is one (country, period) observation.
type LongRecord struct {
	Code        string
	Year        int
	Temperature *float64
}

// Country is a row of the country reference table.
type Country struct {
	Code string
	Name string
}

// Prediction is one predicted (country, year) temperature.
type Prediction struct {
	Code        string
	Year        int
	Temperature float64
}

// GridKey addresses one cell of a Grid.
type GridKey struct {
	Code string
	Year int
}

// Grid is the (code, year) → temperature view of a table. Keys present with a
// nil value are missing cells.
type Grid map[GridKey]*float64

// Float returns a pointer to v, for building tables in code and tests.
func Float(v float64) *float64 { return &v }
