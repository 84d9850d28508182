package sqlgen

import (
	"strings"

	"climate/internal/climate"
	"climate/internal/ddl"
)

// CountryScript renders the reference table script: DROP, CREATE with a unique
// non-null code, and one multi-row INSERT. With no rows the INSERT is omitted.
func CountryScript(d ddl.Dialect, table string, esc Escape, rows []climate.Country) (string, error) {
	var sb strings.Builder
	h, err := header(d, ddl.TableDef{
		Name:        table,
		SurrogateID: true,
		Columns:     []ddl.ColumnDef{codeColumn(true), nameColumn()},
	})
	if err != nil {
		return "", err
	}
	sb.WriteString(h)
	sb.WriteByte('\n')
	if len(rows) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("INSERT INTO " + table + " (" + ColCode + ", " + ColName + ") VALUES\n")
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString("(" + esc.Quote(r.Code) + ", " + esc.Quote(r.Name) + ")")
	}
	sb.WriteByte(';')
	return sb.String(), nil
}
