package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement:
//
//	CREATE TABLE <name> (
//	    <auto key>,
//	    <col> <type> [NOT NULL] [UNIQUE],
//	    ...,
//	    FOREIGN KEY (<col>) REFERENCES <table>(<col>)
//	);
//
// Each line carries its column's Indent; the key and constraints use Indent.
// There is no trailing newline.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 && !t.SurrogateID {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	if t.SurrogateID {
		lines = append(lines, Indent+d.AutoKey)
	}
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", name)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", col)
		}
		if c.Quote {
			col = d.QuoteIdent(c.Name)
		}

		var sb strings.Builder
		sb.WriteString(c.Indent)
		sb.WriteString(col)
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if c.NotNull {
			sb.WriteString(" NOT NULL")
		}
		if c.Unique {
			sb.WriteString(" UNIQUE")
		}
		lines = append(lines, sb.String())
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("%sFOREIGN KEY (%s) REFERENCES %s(%s)", Indent, fk.Column, fk.RefTable, fk.RefColumn))
	}

	return "CREATE TABLE " + name + " (\n" + strings.Join(lines, ",\n") + "\n);", nil
}
