// Package ddl renders the DROP and CREATE TABLE statements of the exported
// scripts for the supported SQL dialects.
//
// The mysql dialect is the default and reproduces the published scripts byte
// for byte. The others change identifier quoting, the surrogate-key clause and
// a few column types so the same scripts load into PostgreSQL, SQL Server and
// SQLite.
package ddl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dialect is a set of SQL rendering rules for one database family.
type Dialect struct {
	Name string

	// AutoKey is the column definition of the surrogate "id" key.
	AutoKey string
	// YearType and FloatType are used for year and temperature columns.
	YearType  string
	FloatType string
	// DropSuffix is appended inside DROP TABLE IF EXISTS (e.g. " CASCADE").
	DropSuffix string
	// BackslashEscapes reports whether the database treats a backslash inside
	// a string literal as an escape character.
	BackslashEscapes bool

	quote       func(string) string
	placeholder func(int) string
}

// QuoteIdent quotes a single identifier.
func (d Dialect) QuoteIdent(id string) string { return d.quote(id) }

// Placeholder returns the bind parameter marker for the 1-based argument n.
func (d Dialect) Placeholder(n int) string { return d.placeholder(n) }

// DropTable renders the DROP TABLE IF EXISTS statement for table.
func (d Dialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + table + d.DropSuffix + ";"
}

func backtick(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
func dquote(id string) string   { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
func bracket(id string) string  { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

func question(int) string { return "?" }

var dialects = map[string]Dialect{
	"mysql": {
		Name:             "mysql",
		AutoKey:          "id INT AUTO_INCREMENT PRIMARY KEY",
		YearType:         "YEAR",
		FloatType:        "FLOAT",
		BackslashEscapes: true,
		quote:            backtick,
		placeholder:      question,
	},
	"postgres": {
		Name:        "postgres",
		AutoKey:     "id SERIAL PRIMARY KEY",
		YearType:    "SMALLINT",
		FloatType:   "REAL",
		DropSuffix:  " CASCADE",
		quote:       dquote,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
	"sqlserver": {
		Name:        "sqlserver",
		AutoKey:     "id INT IDENTITY(1,1) PRIMARY KEY",
		YearType:    "SMALLINT",
		FloatType:   "FLOAT",
		quote:       bracket,
		placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
	},
	"sqlite": {
		Name:        "sqlite",
		AutoKey:     "id INTEGER PRIMARY KEY AUTOINCREMENT",
		YearType:    "INTEGER",
		FloatType:   "REAL",
		quote:       dquote,
		placeholder: question,
	},
}

var aliases = map[string]string{
	"":           "mysql",
	"mariadb":    "mysql",
	"postgresql": "postgres",
	"pgx":        "postgres",
	"mssql":      "sqlserver",
	"sqlite3":    "sqlite",
}

// Lookup returns the dialect registered under name or one of its aliases.
func Lookup(name string) (Dialect, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		n = a
	}
	d, ok := dialects[n]
	if !ok {
		return Dialect{}, fmt.Errorf("ddl: unknown dialect %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// MySQL returns the default dialect.
func MySQL() Dialect { return dialects["mysql"] }

// Names lists the canonical dialect names.
func Names() []string {
	out := make([]string, 0, len(dialects))
	for n := range dialects {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
