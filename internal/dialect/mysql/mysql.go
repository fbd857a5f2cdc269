// Package mysql provides the MySQL backend of the DDL compiler: full-schema
// creation scripts, engine-specific type adaptation, and stored procedure
// post-creation hooks.
package mysql

import (
	"fmt"
	"strings"

	"ogma/internal/core"
	"ogma/internal/dialect"
)

func init() {
	dialect.RegisterDialect(dialect.MySQL, func() dialect.Dialect {
		return NewMySQLDialect()
	})
}

// Dialect bundles the MySQL DDL compiler.
type Dialect struct {
	compiler *Compiler
}

// NewMySQLDialect initializes a new MySQL dialect instance.
func NewMySQLDialect() *Dialect {
	return &Dialect{compiler: NewCompiler()}
}

// Name returns the name of the MySQL dialect.
func (d *Dialect) Name() dialect.Type {
	return dialect.MySQL
}

// Compiler returns the DDL compiler for the MySQL dialect.
func (d *Dialect) Compiler() dialect.Compiler {
	return d.compiler
}

// Compiler is a stateless struct that renders MySQL DDL from a schema.
type Compiler struct{}

// NewCompiler initializes a new MySQL DDL compiler instance.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile renders the full DDL text for the schema: CREATE TABLE statements
// in dependency order joined with a stable separator, then each stored
// procedure wrapped in delimiter-change markers. Trailing whitespace is
// stripped per line so compiling the same model twice is byte-identical.
func (c *Compiler) Compile(s *core.Schema) (string, error) {
	adapted := Adapt(s)

	statements, err := c.createTableStatements(adapted)
	if err != nil {
		return "", err
	}

	script := strings.Join(statements, ";\n\n")
	for _, sp := range adapted.Procedures {
		if script != "" {
			script += ";\n\n"
		}
		script += sp.CreationStatement()
	}
	return multilineRstrip(script), nil
}

// CreateStatements returns the adapted table-creation statements for direct
// execution, in dependency order and without trailing semicolons.
func (c *Compiler) CreateStatements(s *core.Schema) ([]string, error) {
	return c.createTableStatements(Adapt(s))
}

// PostCreateHooks returns the bare stored procedure statements to run after
// all tables exist. No delimiter markers: each statement is sent on its own.
func (c *Compiler) PostCreateHooks(s *core.Schema) []string {
	hooks := make([]string, 0, len(s.Procedures))
	for _, sp := range s.Procedures {
		hooks = append(hooks, sp.SQL())
	}
	return hooks
}

func (c *Compiler) createTableStatements(s *core.Schema) ([]string, error) {
	tables, err := s.SortedTables()
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	statements := make([]string, 0, len(tables))
	for _, t := range tables {
		statements = append(statements, c.createTable(t))
	}
	return statements, nil
}

func (c *Compiler) createTable(t *core.Table) string {
	name := c.QuoteIdentifier(t.Name)

	var lines []string
	for _, col := range t.Columns {
		lines = append(lines, "  "+c.columnDefinition(col))
	}
	for _, con := range t.Constraints {
		if line := c.constraintDefinition(con); line != "" {
			lines = append(lines, "  "+line)
		}
	}
	for _, idx := range t.Indexes {
		if line := c.indexDefinitionInline(idx); line != "" {
			lines = append(lines, "  "+line)
		}
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)%s", name, strings.Join(lines, ",\n"), c.tableOptions(t))
}

func (c *Compiler) columnDefinition(col *core.Column) string {
	parts := []string{c.QuoteIdentifier(col.Name), col.Type.SQL()}
	if col.Nullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}
	return strings.Join(parts, " ")
}

func (c *Compiler) constraintDefinition(con *core.Constraint) string {
	switch con.Type {
	case core.ConstraintPrimaryKey:
		return fmt.Sprintf("PRIMARY KEY %s", c.formatColumns(con.Columns))
	case core.ConstraintUnique:
		if name := strings.TrimSpace(con.Name); name != "" {
			return fmt.Sprintf("CONSTRAINT %s UNIQUE KEY %s", c.QuoteIdentifier(name), c.formatColumns(con.Columns))
		}
		return fmt.Sprintf("UNIQUE KEY %s", c.formatColumns(con.Columns))
	case core.ConstraintCheck:
		expr := strings.TrimSpace(con.CheckExpression)
		if expr == "" {
			return ""
		}
		if name := strings.TrimSpace(con.Name); name != "" {
			return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", c.QuoteIdentifier(name), expr)
		}
		return fmt.Sprintf("CHECK (%s)", expr)
	case core.ConstraintForeignKey:
		return c.foreignKeyDefinition(con)
	default:
		return ""
	}
}

func (c *Compiler) foreignKeyDefinition(con *core.Constraint) string {
	if len(con.Columns) == 0 || strings.TrimSpace(con.ReferencedTable) == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(128)
	if name := strings.TrimSpace(con.Name); name != "" {
		sb.WriteString("CONSTRAINT ")
		sb.WriteString(c.QuoteIdentifier(name))
		sb.WriteString(" ")
	}
	sb.WriteString("FOREIGN KEY ")
	sb.WriteString(c.formatColumns(con.Columns))
	sb.WriteString(" REFERENCES ")
	sb.WriteString(c.QuoteIdentifier(con.ReferencedTable))
	sb.WriteString(" ")
	sb.WriteString(c.formatColumns(con.ReferencedColumns))
	if del := strings.TrimSpace(string(con.OnDelete)); del != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(del)
	}
	if upd := strings.TrimSpace(string(con.OnUpdate)); upd != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(upd)
	}
	return sb.String()
}

func (c *Compiler) indexDefinitionInline(idx *core.Index) string {
	name := strings.TrimSpace(idx.Name)
	if name == "" {
		return ""
	}
	cols := c.formatColumns(idx.Columns)
	if idx.Unique {
		return fmt.Sprintf("UNIQUE KEY %s %s", c.QuoteIdentifier(name), cols)
	}
	return fmt.Sprintf("KEY %s %s", c.QuoteIdentifier(name), cols)
}

func (c *Compiler) tableOptions(t *core.Table) string {
	var parts []string
	o := t.Options
	if engine := strings.TrimSpace(o.Engine); engine != "" {
		parts = append(parts, "ENGINE="+engine)
	}
	if charset := strings.TrimSpace(o.Charset); charset != "" {
		parts = append(parts, "DEFAULT CHARSET="+charset)
	}
	if collate := strings.TrimSpace(o.Collate); collate != "" {
		parts = append(parts, "COLLATE="+collate)
	}
	if rowFormat := strings.TrimSpace(o.RowFormat); rowFormat != "" {
		parts = append(parts, "ROW_FORMAT="+rowFormat)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func (c *Compiler) formatColumns(cols []string) string {
	var quoted []string
	for _, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		quoted = append(quoted, c.QuoteIdentifier(col))
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// QuoteIdentifier is a function used for quote identification inside an SQL dialect.
func (c *Compiler) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString is a function used for quote string inside an SQL dialect.
func (c *Compiler) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1A':
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// multilineRstrip removes trailing spaces from every line of a multiline string.
func multilineRstrip(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
