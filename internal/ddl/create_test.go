package ddl

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		dialect     string
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty name",
			def:         TableDef{Columns: []ColumnDef{{Name: "a", SQLType: "INT"}}},
			errContains: "table name must not be empty",
		},
		{
			name:        "no columns",
			def:         TableDef{Name: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column without type",
			def:         TableDef{Name: "t", Columns: []ColumnDef{{Name: "a"}}},
			errContains: "missing SQLType",
		},
		{
			name: "reference table in mysql",
			def: TableDef{
				Name:        "CountryInfo",
				SurrogateID: true,
				Columns: []ColumnDef{
					{Name: "country_code", SQLType: "VARCHAR(3)", NotNull: true, Unique: true, Indent: Indent},
					{Name: "country_name", SQLType: "VARCHAR(100)", Indent: Indent},
				},
			},
			wantSQL: "CREATE TABLE CountryInfo (\n" +
				"    id INT AUTO_INCREMENT PRIMARY KEY,\n" +
				"    country_code VARCHAR(3) NOT NULL UNIQUE,\n" +
				"    country_name VARCHAR(100)\n" +
				");",
		},
		{
			name:    "quoted value columns in sqlserver",
			dialect: "mssql",
			def: TableDef{
				Name:        "T",
				SurrogateID: true,
				Columns:     []ColumnDef{{Name: "1950-07", SQLType: "FLOAT", Quote: true}},
			},
			wantSQL: "CREATE TABLE T (\n    id INT IDENTITY(1,1) PRIMARY KEY,\n[1950-07] FLOAT\n);",
		},
		{
			name:    "foreign key in postgres",
			dialect: "postgres",
			def: TableDef{
				Name:        "P",
				Columns:     []ColumnDef{{Name: "country_code", SQLType: "VARCHAR(3)", Indent: Indent}},
				ForeignKeys: []ForeignKey{{Column: "country_code", RefTable: "C", RefColumn: "country_code"}},
			},
			wantSQL: "CREATE TABLE P (\n    country_code VARCHAR(3),\n    FOREIGN KEY (country_code) REFERENCES C(country_code)\n);",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := Lookup(tt.dialect)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.dialect, err)
			}
			got, err := BuildCreateTableSQL(d, tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("BuildCreateTableSQL() error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCreateTableSQL() error = %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, tt.wantSQL)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dialect, in, want string
	}{
		{"mysql", "1950-07", "`1950-07`"},
		{"mysql", "we`ird", "`we``ird`"},
		{"postgres", `a"b`, `"a""b"`},
		{"sqlserver", "weird]id", "[weird]]id]"},
		{"sqlite", "1950", `"1950"`},
	}
	for _, tt := range tests {
		d, err := Lookup(tt.dialect)
		if err != nil {
			t.Fatal(err)
		}
		if got := d.QuoteIdent(tt.in); got != tt.want {
			t.Errorf("%s QuoteIdent(%q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	for alias, want := range map[string]string{"": "mysql", "MariaDB": "mysql", "pgx": "postgres", "mssql": "sqlserver", "sqlite3": "sqlite"} {
		d, err := Lookup(alias)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", alias, err)
		}
		if d.Name != want {
			t.Errorf("Lookup(%q).Name = %q, want %q", alias, d.Name, want)
		}
	}
	if _, err := Lookup("oracle"); err == nil {
		t.Fatalf("Lookup(oracle) returned nil error")
	}
}

func TestPlaceholderAndDrop(t *testing.T) {
	t.Parallel()

	pg, _ := Lookup("postgres")
	ms, _ := Lookup("sqlserver")
	my := MySQL()
	if got := pg.Placeholder(2); got != "$2" {
		t.Errorf("postgres Placeholder(2) = %q", got)
	}
	if got := ms.Placeholder(1); got != "@p1" {
		t.Errorf("sqlserver Placeholder(1) = %q", got)
	}
	if got := my.Placeholder(3); got != "?" {
		t.Errorf("mysql Placeholder(3) = %q", got)
	}
	if got := pg.DropTable("CountryInfo"); got != "DROP TABLE IF EXISTS CountryInfo CASCADE;" {
		t.Errorf("postgres DropTable = %q", got)
	}
	if got := my.DropTable("CountryInfo"); got != "DROP TABLE IF EXISTS CountryInfo;" {
		t.Errorf("mysql DropTable = %q", got)
	}
}
