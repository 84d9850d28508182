// Package csv implements the tabular CSV reader shared by every pipeline. It
// reads a whole (small) file into a Table, normalizes headers, optionally
// NFC-normalizes cell text, and either soft-fails or rejects rows whose width
// does not match the header.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record. When
	// HasHeader is set the header width is enforced instead.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys. Only applies when
	// HasHeader is true. Unmapped headers are lowercased with spaces replaced
	// by underscores.
	HeaderMap map[string]string

	// RawHeader keeps header text as written (only the BOM and surrounding
	// space are removed); HeaderMap and lowercasing are skipped.
	RawHeader bool

	// NormalizeUnicode rewrites every cell (and header) to Unicode NFC so that
	// composed and decomposed spellings of the same name compare equal.
	NormalizeUnicode bool

	// Strict turns width mismatches and malformed rows into errors instead of
	// logging and skipping them.
	Strict bool
}

// Table is a parsed CSV file. Header is nil when the input has no header row.
// Every row in Rows has the header width (or ExpectedFields) when one is known.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of the named header column, or -1.
func (t Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// RowError describes a rejected row in strict mode. Line is the 1-based data
// line (the header is not counted).
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("csv: row %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit caps how many skipped rows are logged individually.
const skipLogLimit = 400

// Parse consumes CSV records from r and returns the parsed table along with the
// number of rows that were skipped due to parse errors or field-count
// mismatches. In strict mode the first bad row is returned as a *RowError.
func (p *Parser) Parse(r io.Reader) (Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced below so that soft-fail mode can skip instead of abort.
	cr.FieldsPerRecord = -1

	var (
		t       Table
		width   = p.opt.ExpectedFields
		skipped int
	)

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Table{}, 0, fmt.Errorf("read csv header: empty input")
			}
			return Table{}, 0, fmt.Errorf("read csv header: %w", err)
		}
		t.Header = normalizeHeaders(h, p.opt)
		width = len(t.Header)
	}

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err == nil && width > 0 && len(row) != width {
			err = fmt.Errorf("incorrect number of fields (expected %d, got %d)", width, len(row))
		}
		if err != nil {
			if p.opt.Strict {
				return Table{}, skipped, &RowError{Line: line, Err: err}
			}
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}

		out := make([]string, len(row))
		for i, val := range row {
			out[i] = p.cell(val)
		}
		t.Rows = append(t.Rows, out)
	}

	return t, skipped, nil
}

func (p *Parser) cell(val string) string {
	if p.opt.TrimSpace {
		val = strings.TrimSpace(val)
	}
	if p.opt.NormalizeUnicode {
		val = norm.NFC.String(val)
	}
	return val
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (lowercase, spaces to underscores). It
// also strips a UTF-8 BOM from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if opt.NormalizeUnicode {
			c = norm.NFC.String(c)
		}
		if opt.RawHeader {
			res[i] = c
			continue
		}
		if m, ok := opt.HeaderMap[c]; ok {
			res[i] = m
			continue
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
