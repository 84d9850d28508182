package climate

// YearOf returns the integer year encoded in the first four characters of a
// value-column header.
func YearOf(header string) (int, error) {
	if len(header) < 4 {
		return 0, &ParseError{Column: header, Reason: "header shorter than a four-digit year"}
	}
	year := 0
	for i := 0; i < 4; i++ {
		c := header[i]
		if c < '0' || c > '9' {
			return 0, &ParseError{Column: header, Reason: "header does not start with a four-digit year"}
		}
		year = year*10 + int(c-'0')
	}
	return year, nil
}

func (t WideTable) years() ([]int, error) {
	years := make([]int, len(t.Columns))
	for i, h := range t.Columns {
		y, err := YearOf(h)
		if err != nil {
			return nil, err
		}
		years[i] = y
	}
	return years, nil
}

// Melt unpivots t into long records in row-major order: every value column of
// the first row, then the second row, and so on. Duplicate codes or headers are
// passed through unchanged. An invalid header fails the whole call.
func Melt(t WideTable) ([]LongRecord, error) {
	years, err := t.years()
	if err != nil {
		return nil, err
	}
	out := make([]LongRecord, 0, len(t.Rows)*len(years))
	for _, row := range t.Rows {
		for j, y := range years {
			var v *float64
			if j < len(row.Values) {
				v = row.Values[j]
			}
			out = append(out, LongRecord{Code: row.Code, Year: y, Temperature: v})
		}
	}
	return out, nil
}

// Grid is the (code, year) view of t, built directly from the wide rows.
func (t WideTable) Grid() (Grid, error) {
	years, err := t.years()
	if err != nil {
		return nil, err
	}
	g := make(Grid, len(t.Rows)*len(years))
	for _, row := range t.Rows {
		for j, y := range years {
			var v *float64
			if j < len(row.Values) {
				v = row.Values[j]
			}
			g[GridKey{Code: row.Code, Year: y}] = v
		}
	}
	return g, nil
}

// Pivot re-pivots long records on (code, year). Later records overwrite
// earlier ones with the same key.
func Pivot(records []LongRecord) Grid {
	g := make(Grid, len(records))
	for _, r := range records {
		g[GridKey{Code: r.Code, Year: r.Year}] = r.Temperature
	}
	return g
}

// DistinctCodes returns the codes of records in order of first appearance.
func DistinctCodes(records []LongRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Code]; ok {
			continue
		}
		seen[r.Code] = struct{}{}
		out = append(out, r.Code)
	}
	return out
}

// Observed returns the records that have a temperature.
func Observed(records []LongRecord) []LongRecord {
	out := make([]LongRecord, 0, len(records))
	for _, r := range records {
		if r.Temperature != nil {
			out = append(out, r)
		}
	}
	return out
}
