package enumtables

import (
	"fmt"
	"strings"

	"ogma/internal/core"
	"ogma/internal/dialect"
)

// LookupTableSQL returns the CREATE TABLE statement for an enumeration's
// lookup table. Both columns are unique so the mapping is a bijection.
func LookupTableSQL(c dialect.Compiler, e *core.Enum) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s INTEGER NOT NULL UNIQUE,\n  %s VARCHAR(50) NOT NULL UNIQUE\n)",
		c.QuoteIdentifier(LookupTableName(e.Name)),
		c.QuoteIdentifier("value"),
		c.QuoteIdentifier("name"),
	)
}

// LookupInsertSQL returns one INSERT statement per enumeration value, in
// declaration order, assigning ordinal codes starting at zero.
func LookupInsertSQL(c dialect.Compiler, e *core.Enum) []string {
	table := c.QuoteIdentifier(LookupTableName(e.Name))
	inserts := make([]string, 0, len(e.Values))
	for code, value := range e.Values {
		inserts = append(inserts, fmt.Sprintf(
			"INSERT INTO %s (%s, %s) VALUES (%d, %s)",
			table, c.QuoteIdentifier("value"), c.QuoteIdentifier("name"),
			code, c.QuoteString(value),
		))
	}
	return inserts
}

// ViewSQL returns the CREATE OR REPLACE VIEW statement joining every
// enum-typed column of the table to its lookup table. Returns an empty
// string when the table has no enum columns.
func ViewSQL(c dialect.Compiler, t *core.Table) string {
	enumCols := t.EnumColumns()
	if len(enumCols) == 0 {
		return ""
	}

	var selects []string
	var joins []string
	for _, col := range enumCols {
		lookup := c.QuoteIdentifier(LookupTableName(col.Type.Enum.Name))
		quoted := c.QuoteIdentifier(col.Name)
		selects = append(selects, fmt.Sprintf(
			"%s.%s AS %s", lookup, c.QuoteIdentifier("name"), c.QuoteIdentifier(col.Name+"_name"),
		))
		joins = append(joins, fmt.Sprintf(
			"LEFT JOIN %s ON t.%s = %s.%s", lookup, quoted, lookup, c.QuoteIdentifier("value"),
		))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE OR REPLACE VIEW %s AS\n", c.QuoteIdentifier(ViewName(t.Name)))
	fmt.Fprintf(&sb, "SELECT t.*,\n       %s\n", strings.Join(selects, ",\n       "))
	fmt.Fprintf(&sb, "FROM %s t\n", c.QuoteIdentifier(t.Name))
	sb.WriteString(strings.Join(joins, "\n"))
	return sb.String()
}
