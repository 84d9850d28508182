package ddl

// ColumnDef describes a single column of a TableDef.
//
// Fields:
//   - Name: column name; emitted verbatim unless Quote is set
//   - SQLType: target SQL type (e.g., VARCHAR(3), FLOAT)
//   - NotNull, Unique: column constraints
//   - Quote: quote Name with the dialect's identifier quoting (value columns
//     such as 1950-07 are not valid bare identifiers)
//   - Indent: leading whitespace of the rendered line
type ColumnDef struct {
	Name    string
	SQLType string
	NotNull bool
	Unique  bool
	Quote   bool
	Indent  string
}

// ForeignKey is a single-column reference to another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef holds the table name, an optional auto-increment surrogate key
// named "id", the ordered columns, and foreign keys. Table names are emitted
// verbatim.
type TableDef struct {
	Name        string
	SurrogateID bool
	Columns     []ColumnDef
	ForeignKeys []ForeignKey
}

// Indent is the indentation used for fixed columns and constraints.
const Indent = "    "
