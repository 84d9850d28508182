package climate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	pcsv "climate/internal/parser/csv"
)

// PredictionHeader is the header row of the predicted-temperature CSV.
var PredictionHeader = []string{"country", "year", "predicted_temperature"}

// IsMissing reports whether a cell is one of the missing-value tokens: empty,
// NA, NaN or null (any case).
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}

// ReadWide parses the wide temperature CSV. The header must name a code and a
// name column; every other column is a value column kept in file order with its
// header text verbatim. Rows with the wrong width are rejected.
func ReadWide(r io.Reader) (WideTable, error) {
	tbl, _, err := pcsv.NewParser(pcsv.Options{
		HasHeader:        true,
		RawHeader:        true,
		NormalizeUnicode: true,
		Strict:           true,
	}).Parse(r)
	if err != nil {
		return WideTable{}, fmt.Errorf("read wide table: %w", err)
	}

	codeIdx, nameIdx := -1, -1
	var valueIdx []int
	var out WideTable
	for i, h := range tbl.Header {
		switch strings.ToLower(h) {
		case CodeColumn:
			codeIdx = i
		case NameColumn:
			nameIdx = i
		default:
			valueIdx = append(valueIdx, i)
			out.Columns = append(out.Columns, h)
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return WideTable{}, &ParseError{Column: CodeColumn + "/" + NameColumn, Reason: "wide table header lacks code or name column"}
	}
	if _, err := out.years(); err != nil {
		return WideTable{}, err
	}

	out.Rows = make([]WideRow, 0, len(tbl.Rows))
	for n, rec := range tbl.Rows {
		row := WideRow{
			Code:   strings.TrimSpace(rec[codeIdx]),
			Name:   rec[nameIdx],
			Values: make([]*float64, len(valueIdx)),
		}
		for j, idx := range valueIdx {
			cell := rec[idx]
			if IsMissing(cell) {
				continue
			}
			v, err := parseTemperature(cell)
			if err != nil {
				return WideTable{}, &ParseError{Column: out.Columns[j], Row: n + 1, Value: cell, Reason: "not a decimal temperature"}
			}
			row.Values[j] = &v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ReadCountries parses the two-column, headerless country reference CSV.
func ReadCountries(r io.Reader) ([]Country, error) {
	tbl, _, err := pcsv.NewParser(pcsv.Options{
		ExpectedFields:   2,
		NormalizeUnicode: true,
		Strict:           true,
	}).Parse(r)
	if err != nil {
		return nil, fmt.Errorf("read countries: %w", err)
	}
	out := make([]Country, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		out = append(out, Country{Code: strings.TrimSpace(rec[0]), Name: rec[1]})
	}
	return out, nil
}

// ReadPredictions parses a predicted-temperature CSV written by
// EncodePredictions.
func ReadPredictions(r io.Reader) ([]Prediction, error) {
	tbl, _, err := pcsv.NewParser(pcsv.Options{HasHeader: true, TrimSpace: true, Strict: true}).Parse(r)
	if err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}
	idx := make([]int, len(PredictionHeader))
	for i, name := range PredictionHeader {
		if idx[i] = tbl.Index(name); idx[i] < 0 {
			return nil, &ParseError{Column: name, Reason: "prediction header missing column"}
		}
	}

	out := make([]Prediction, 0, len(tbl.Rows))
	for n, rec := range tbl.Rows {
		year, err := strconv.Atoi(rec[idx[1]])
		if err != nil {
			return nil, &ParseError{Column: PredictionHeader[1], Row: n + 1, Value: rec[idx[1]], Reason: "not an integer year"}
		}
		temp, err := parseTemperature(rec[idx[2]])
		if err != nil {
			return nil, &ParseError{Column: PredictionHeader[2], Row: n + 1, Value: rec[idx[2]], Reason: "not a decimal temperature"}
		}
		out = append(out, Prediction{Code: rec[idx[0]], Year: year, Temperature: temp})
	}
	return out, nil
}

// parseTemperature parses a finite decimal; NaN and Inf have no SQL literal.
func parseTemperature(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", cell)
	}
	return v, nil
}

// EncodePredictions renders predictions as CSV with PredictionHeader.
func EncodePredictions(preds []Prediction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(PredictionHeader); err != nil {
		return nil, err
	}
	for _, p := range preds {
		rec := []string{p.Code, strconv.Itoa(p.Year), FormatFloat(p.Temperature)}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode predictions: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatFloat renders v in its shortest exact decimal form without exponent.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
