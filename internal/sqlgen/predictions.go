package sqlgen

import (
	"strconv"
	"strings"

	"climate/internal/climate"
	"climate/internal/ddl"
)

// PredictionScript renders the prediction table, whose country_code
// references the reference table, followed by one multi-row INSERT.
func PredictionScript(d ddl.Dialect, tables Tables, esc Escape, preds []climate.Prediction) (string, error) {
	var sb strings.Builder
	h, err := header(d, ddl.TableDef{
		Name:        tables.Predictions,
		SurrogateID: true,
		Columns: []ddl.ColumnDef{
			codeColumn(false),
			{Name: ColYear, SQLType: d.YearType, Indent: ddl.Indent},
			{Name: ColPredicted, SQLType: d.FloatType, Indent: ddl.Indent},
		},
		ForeignKeys: []ddl.ForeignKey{{Column: ColCode, RefTable: tables.Countries, RefColumn: ColCode}},
	})
	if err != nil {
		return "", err
	}
	sb.WriteString(h)
	sb.WriteByte('\n')
	if len(preds) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("INSERT INTO " + tables.Predictions + " (" + ColCode + ", " + ColYear + ", " + ColPredicted + ") VALUES\n")
	for i, p := range preds {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString("(" + esc.Quote(p.Code) + ", " + strconv.Itoa(p.Year) + ", " + climate.FormatFloat(p.Temperature) + ")")
	}
	sb.WriteByte(';')
	return sb.String(), nil
}
