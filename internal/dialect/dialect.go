// Package dialect provides a unified interface for all database engines the
// DDL compiler can target. Engines register themselves on import, so adding a
// backend never touches the callers.
package dialect

import (
	"fmt"

	"ogma/internal/core"
)

type Type string

const (
	MySQL Type = "mysql"
)

// Compiler turns a schema into engine-specific DDL. Compilation never mutates
// the canonical schema: engine adaptations run on a copy.
type Compiler interface {
	// Compile renders the full DDL script for the schema: one statement per
	// table in dependency order, followed by delimiter-wrapped stored
	// procedure statements. Output is deterministic.
	Compile(s *core.Schema) (string, error)

	// CreateStatements returns the individual table-creation statements for
	// direct execution against a live engine, without delimiter markers.
	CreateStatements(s *core.Schema) ([]string, error)

	// PostCreateHooks returns the statements to run after all tables exist,
	// currently the stored procedure creation statements.
	PostCreateHooks(s *core.Schema) []string

	QuoteIdentifier(name string) string
	QuoteString(value string) string
}

// Dialect is one supported target engine.
type Dialect interface {
	Name() Type
	Compiler() Compiler
}

var registry = map[Type]func() Dialect{}

// RegisterDialect creates a new registry entry for the specified dialect.
func RegisterDialect(d Type, ctor func() Dialect) {
	registry[d] = ctor
}

// GetDialect returns the dialect for the specified type from the registry,
// falling back to MySQL. An empty registry is a wiring mistake (the dialect
// package was never imported), so it panics rather than returning nil.
func GetDialect(d Type) Dialect {
	if ctor, ok := registry[d]; ok {
		return ctor()
	}
	if ctor, ok := registry[MySQL]; ok {
		return ctor()
	}
	panic(fmt.Sprintf("dialect: no dialect registered for %q; import the dialect package for its side effects", d))
}
