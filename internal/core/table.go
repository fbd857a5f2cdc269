package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TypeKind discriminates the closed set of column type variants.
type TypeKind string

const (
	TypeEnum    TypeKind = "enum"
	TypeBoolean TypeKind = "boolean"
	TypeBinary  TypeKind = "binary"
	TypeOther   TypeKind = "other"
)

// ColumnType is a column's type: enum-backed, boolean, binary, or a raw SQL
// type passed through verbatim. The enum variant carries a back-reference to
// its Enum for constraint derivation; it does not own the Enum.
type ColumnType struct {
	Kind TypeKind
	Enum *Enum  // set only when Kind is TypeEnum
	Raw  string // SQL type text for binary and passthrough variants
}

// BooleanType returns the boolean column type.
func BooleanType() ColumnType { return ColumnType{Kind: TypeBoolean} }

// BinaryType returns a binary column type with the given SQL type text,
// e.g. "BINARY(16)" or "VARBINARY(255)".
func BinaryType(raw string) ColumnType { return ColumnType{Kind: TypeBinary, Raw: raw} }

// RawType returns a passthrough column type with the given SQL type text.
func RawType(raw string) ColumnType { return ColumnType{Kind: TypeOther, Raw: raw} }

// SQL returns the SQL type text the DDL compiler should emit for this type.
// Enum-backed columns are stored as plain integers.
func (ct ColumnType) SQL() string {
	switch ct.Kind {
	case TypeEnum:
		return "INTEGER"
	case TypeBoolean:
		return "BOOL"
	default:
		return ct.Raw
	}
}

// Column represents a single column inside a table. AutoIncrement defaults to
// false even for primary-key columns: surrogate keys must opt in explicitly.
type Column struct {
	Name          string
	Type          ColumnType
	Nullable      bool
	Default       *string // server-side default expression, already literal-wrapped
	AutoIncrement bool
	PrimaryKey    bool
	Unique        bool
}

// DefaultExpr wraps a model-supplied default value as a server-side default
// expression. Booleans and integers become non-quoted literals, recognized
// SQL keywords and parenthesized expressions pass through unchanged, and any
// other string is quoted.
func DefaultExpr(value any) (string, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		return wrapStringDefault(v), nil
	default:
		return "", &ConfigurationError{Message: fmt.Sprintf("unsupported default value type %T", value)}
	}
}

var defaultKeywords = []string{"NULL", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW()", "TRUE", "FALSE"}

func wrapStringDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "''"
	}
	upper := strings.ToUpper(v)
	if slices.Contains(defaultKeywords, upper) {
		return upper
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	if strings.ContainsAny(v, "()") {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// ConstraintType is an ENUM with all supported constraint types.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintCheck      ConstraintType = "CHECK"
)

// ReferentialAction is an ENUM with the supported foreign-key actions.
type ReferentialAction string

const (
	RefActionNone     ReferentialAction = ""
	RefActionCascade  ReferentialAction = "CASCADE"
	RefActionRestrict ReferentialAction = "RESTRICT"
	RefActionSetNull  ReferentialAction = "SET NULL"
)

// Constraint contains all constraint options for a table.
type Constraint struct {
	Name    string
	Type    ConstraintType
	Columns []string

	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferentialAction
	OnUpdate          ReferentialAction

	CheckExpression string
}

// Index represents a secondary index on a table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// TableOptions are the engine-specific storage options emitted with every
// table. They are defaulted deterministically so generated DDL is stable
// across runs and machines.
type TableOptions struct {
	Engine    string
	Charset   string
	Collate   string
	RowFormat string
}

// DefaultTableOptions returns the fixed storage settings applied to tables
// that do not override them.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		Engine:    "InnoDB",
		Charset:   "utf8mb4",
		Collate:   "utf8mb4_general_ci",
		RowFormat: "DYNAMIC",
	}
}

// Table represents a table in the schema. Columns keep declaration order;
// uniqueness is enforced at insertion time.
type Table struct {
	Name        string
	Columns     []*Column
	Constraints []*Constraint
	Indexes     []*Index
	Options     TableOptions

	columnIndex map[string]*Column
}

// AddColumn appends a column, enforcing name uniqueness within the table.
// Declaring an enum-backed column immediately appends the derived check
// constraint, so constraint order in DDL follows column declaration order.
func (t *Table) AddColumn(c *Column) error {
	if _, ok := t.columnIndex[c.Name]; ok {
		return &DuplicateDefinitionError{Kind: "column", Name: c.Name, Scope: "table " + t.Name}
	}
	t.columnIndex[c.Name] = c
	t.Columns = append(t.Columns, c)
	if c.Type.Kind == TypeEnum {
		t.Constraints = append(t.Constraints, c.Type.Enum.CheckConstraint(t.Name, c.Name))
	}
	return nil
}

// AddConstraint appends an explicit constraint to the table.
func (t *Table) AddConstraint(c *Constraint) {
	t.Constraints = append(t.Constraints, c)
}

// AddIndex appends a secondary index to the table.
func (t *Table) AddIndex(i *Index) {
	t.Indexes = append(t.Indexes, i)
}

// FindColumn looks for a column by name inside a table.
func (t *Table) FindColumn(name string) *Column {
	return t.columnIndex[name]
}

// EnumColumns returns the table's enum-backed columns in declaration order.
func (t *Table) EnumColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.Type.Kind == TypeEnum {
			cols = append(cols, c)
		}
	}
	return cols
}

// PrimaryKey returns the primary key constraint of the table, if any.
func (t *Table) PrimaryKey() *Constraint {
	for _, c := range t.Constraints {
		if c.Type == ConstraintPrimaryKey {
			return c
		}
	}
	return nil
}

func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d cols, %d constraints)", t.Name, len(t.Columns), len(t.Constraints))
}
