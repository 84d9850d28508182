package sqlgen

import "climate/internal/ddl"

// Tables names the three exported tables.
type Tables struct {
	Countries   string `mapstructure:"countries" json:"countries" yaml:"countries"`
	Annual      string `mapstructure:"annual" json:"annual" yaml:"annual"`
	Predictions string `mapstructure:"predictions" json:"predictions" yaml:"predictions"`
}

// DefaultTables returns CountryInfo, OfficialAnnualTemperatures and
// PredictedTemperatures.
func DefaultTables() Tables {
	return Tables{
		Countries:   "CountryInfo",
		Annual:      "OfficialAnnualTemperatures",
		Predictions: "PredictedTemperatures",
	}
}

// Shared column names.
const (
	ColCode      = "country_code"
	ColName      = "country_name"
	ColYear      = "year"
	ColPredicted = "predicted_temperature"
)

func codeColumn(notNullUnique bool) ddl.ColumnDef {
	return ddl.ColumnDef{Name: ColCode, SQLType: "VARCHAR(3)", NotNull: notNullUnique, Unique: notNullUnique, Indent: ddl.Indent}
}

func nameColumn() ddl.ColumnDef {
	return ddl.ColumnDef{Name: ColName, SQLType: "VARCHAR(100)", Indent: ddl.Indent}
}

// header renders the leading blank line, DROP and CREATE of a script.
func header(d ddl.Dialect, t ddl.TableDef) (string, error) {
	create, err := ddl.BuildCreateTableSQL(d, t)
	if err != nil {
		return "", err
	}
	return "\n" + d.DropTable(t.Name) + "\n" + create, nil
}
