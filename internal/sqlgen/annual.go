package sqlgen

import (
	"strings"

	"climate/internal/climate"
	"climate/internal/ddl"
)

// AnnualScript renders the wide official table: DROP, CREATE with one
// floating-point column per value column (header kept verbatim and quoted),
// then one INSERT per country. Values are written as quoted strings and
// missing cells as NULL.
func AnnualScript(d ddl.Dialect, table string, esc Escape, wide climate.WideTable) (string, error) {
	cols := []ddl.ColumnDef{codeColumn(false), nameColumn()}
	quoted := make([]string, len(wide.Columns))
	for i, c := range wide.Columns {
		cols = append(cols, ddl.ColumnDef{Name: c, SQLType: d.FloatType, Quote: true})
		quoted[i] = d.QuoteIdent(c)
	}

	var sb strings.Builder
	h, err := header(d, ddl.TableDef{Name: table, SurrogateID: true, Columns: cols})
	if err != nil {
		return "", err
	}
	// The first INSERT follows ");" on the same line.
	sb.WriteString(h)

	prefix := "INSERT INTO " + table + " (" + ColCode + ", " + ColName
	if len(quoted) > 0 {
		prefix += ", " + strings.Join(quoted, ", ")
	}
	prefix += ") VALUES ("
	for _, row := range wide.Rows {
		sb.WriteString(prefix)
		sb.WriteString(esc.Quote(row.Code))
		sb.WriteString(", ")
		sb.WriteString(esc.Quote(row.Name))
		for j := range wide.Columns {
			sb.WriteString(", ")
			if j >= len(row.Values) || row.Values[j] == nil {
				sb.WriteString("NULL")
				continue
			}
			sb.WriteString(esc.Quote(climate.FormatFloat(*row.Values[j])))
		}
		sb.WriteString(");\n")
	}
	return sb.String(), nil
}
