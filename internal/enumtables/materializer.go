package enumtables

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"ogma/internal/core"
	"ogma/internal/dialect"
)

// MaterializationError reports a failed DDL or DML statement against a named
// database object.
type MaterializationError struct {
	Object string
	Err    error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("failed to materialize %q: %v", e.Object, e.Err)
}

func (e *MaterializationError) Unwrap() error {
	return e.Err
}

// Options struct contains all settings available for materializing enum
// lookup tables and views.
type Options struct {
	DSN     string
	Dialect dialect.Type
	Out     io.Writer
	Verbose bool
}

// Materializer creates enumeration lookup tables and views in a live database.
// Lookup tables are dropped and rebuilt on every run, so the database always
// reflects the declared enumeration values.
type Materializer struct {
	db       *sql.DB
	options  Options
	compiler dialect.Compiler
	out      io.Writer
}

// NewMaterializer returns a pointer to Materializer with provided options.
func NewMaterializer(options Options) *Materializer {
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	return &Materializer{
		options:  options,
		compiler: dialect.GetDialect(options.Dialect).Compiler(),
		out:      out,
	}
}

func (m *Materializer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

// Connect establishes a connection with the target database and pings it.
// If something went wrong, returns an error, otherwise nil.
func (m *Materializer) Connect(ctx context.Context) error {
	db, err := sql.Open("mysql", m.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return fmt.Errorf("failed to ping database: %w", pingErr)
	}

	m.db = db
	return nil
}

// Close closes the database connection.
func (m *Materializer) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Materialize rebuilds every enumeration lookup table, then creates or
// replaces the readable view for every table with enum-typed columns.
func (m *Materializer) Materialize(ctx context.Context, s *core.Schema) error {
	for _, e := range s.Enums {
		if err := m.materializeEnum(ctx, e); err != nil {
			return err
		}
	}
	return m.materializeViews(ctx, s)
}

func (m *Materializer) materializeEnum(ctx context.Context, e *core.Enum) error {
	name := LookupTableName(e.Name)
	m.printf("enum %s -> %s (%d values)\n", e.Name, name, len(e.Values))

	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", m.compiler.QuoteIdentifier(name))
	if _, err := m.db.ExecContext(ctx, drop); err != nil {
		return &MaterializationError{Object: name, Err: err}
	}
	if _, err := m.db.ExecContext(ctx, LookupTableSQL(m.compiler, e)); err != nil {
		return &MaterializationError{Object: name, Err: err}
	}
	for code, insert := range LookupInsertSQL(m.compiler, e) {
		if m.options.Verbose {
			m.printf("    - %2d: %s\n", code, e.Values[code])
		}
		if _, err := m.db.ExecContext(ctx, insert); err != nil {
			return &MaterializationError{Object: name, Err: err}
		}
	}
	return nil
}

func (m *Materializer) materializeViews(ctx context.Context, s *core.Schema) error {
	tables, err := s.SortedTables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		stmt := ViewSQL(m.compiler, t)
		if stmt == "" {
			continue
		}
		name := ViewName(t.Name)
		m.printf("view %s\n", name)
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return &MaterializationError{Object: name, Err: err}
		}
	}
	return nil
}
