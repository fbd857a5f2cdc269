// Package core contains the single source of truth for the database model.
// It provides the entity graph - enums, tables, columns, constraints, stored
// procedures - together with the builder API that enforces the model's
// uniqueness invariants at insertion time.
package core

import (
	"fmt"
	"strings"
)

// Schema is the root of the model: the schema name plus every enum, table,
// and stored procedure declared by a model file. It is built once during
// model loading and treated as read-only by all backends.
type Schema struct {
	Name       string
	SourceFile string // model file the schema was loaded from, for error reporting
	Enums      []*Enum
	Tables     []*Table
	Procedures []*StoredProcedure

	enumIndex  map[string]*Enum
	tableIndex map[string]*Table
	procIndex  map[string]*StoredProcedure
}

// NewSchema creates the build context for one model load. The name is set
// exactly once here; it is validated later by Validate.
func NewSchema(name string) *Schema {
	return &Schema{
		Name:       name,
		enumIndex:  map[string]*Enum{},
		tableIndex: map[string]*Table{},
		procIndex:  map[string]*StoredProcedure{},
	}
}

// AddEnum declares an enumeration with the given ordered values.
func (s *Schema) AddEnum(name string, values ...string) (*Enum, error) {
	if _, ok := s.enumIndex[name]; ok {
		return nil, &DuplicateDefinitionError{Kind: "enum", Name: name}
	}
	e, err := NewEnum(name, values...)
	if err != nil {
		return nil, err
	}
	s.enumIndex[name] = e
	s.Enums = append(s.Enums, e)
	return e, nil
}

// Enum returns a declared enum by name, or nil.
func (s *Schema) Enum(name string) *Enum {
	return s.enumIndex[name]
}

// AddTable declares a table with the fixed default storage options. The table
// also joins the schema's column-name namespace, so later declarations can
// reference its columns as "table.column" instead of free-form strings.
func (s *Schema) AddTable(name string) (*Table, error) {
	if _, ok := s.tableIndex[name]; ok {
		return nil, &DuplicateDefinitionError{Kind: "table", Name: name}
	}
	t := &Table{
		Name:        name,
		Options:     DefaultTableOptions(),
		columnIndex: map[string]*Column{},
	}
	s.tableIndex[name] = t
	s.Tables = append(s.Tables, t)
	return t, nil
}

// Table returns a declared table by name, or nil.
func (s *Schema) Table(name string) *Table {
	return s.tableIndex[name]
}

// AddProcedure appends a stored procedure in declaration order. Procedure
// names share one namespace per schema.
func (s *Schema) AddProcedure(p *StoredProcedure) error {
	if _, ok := s.procIndex[p.Name]; ok {
		return &DuplicateDefinitionError{Kind: "procedure", Name: p.Name}
	}
	s.procIndex[p.Name] = p
	s.Procedures = append(s.Procedures, p)
	return nil
}

// ColumnRef resolves a symbolic "table.column" reference against the tables
// declared so far and returns its two parts. Unknown tables or columns are
// build-time errors, so typos never survive into generated DDL.
func (s *Schema) ColumnRef(ref string) (table, column string, err error) {
	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot >= len(ref)-1 {
		return "", "", fmt.Errorf("invalid column reference %q: want table.column", ref)
	}
	table, column = ref[:dot], ref[dot+1:]
	t := s.tableIndex[table]
	if t == nil {
		return "", "", fmt.Errorf("column reference %q: unknown table %q", ref, table)
	}
	if t.FindColumn(column) == nil {
		return "", "", fmt.Errorf("column reference %q: table %q has no column %q", ref, table, column)
	}
	return table, column, nil
}

// VisitColumns calls visit for every column of every table, tables in
// dependency order, columns in declaration order.
func (s *Schema) VisitColumns(visit func(t *Table, c *Column)) {
	tables, err := s.SortedTables()
	if err != nil {
		tables = s.Tables
	}
	for _, t := range tables {
		for _, c := range t.Columns {
			visit(t, c)
		}
	}
}

// SortedTables returns the tables in dependency-safe order: foreign-key
// targets before their dependents, declaration order otherwise. The order is
// deterministic for a given model.
func (s *Schema) SortedTables() ([]*Table, error) {
	deps := make(map[string][]string, len(s.Tables))
	for _, t := range s.Tables {
		for _, c := range t.Constraints {
			if c.Type != ConstraintForeignKey {
				continue
			}
			if c.ReferencedTable == "" || c.ReferencedTable == t.Name {
				continue
			}
			deps[t.Name] = append(deps[t.Name], c.ReferencedTable)
		}
	}

	emitted := make(map[string]bool, len(s.Tables))
	sorted := make([]*Table, 0, len(s.Tables))
	for len(sorted) < len(s.Tables) {
		progressed := false
		for _, t := range s.Tables {
			if emitted[t.Name] {
				continue
			}
			ready := true
			for _, dep := range deps[t.Name] {
				if _, known := s.tableIndex[dep]; known && !emitted[dep] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			emitted[t.Name] = true
			sorted = append(sorted, t)
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("foreign key cycle detected among tables in schema %q", s.Name)
		}
	}
	return sorted, nil
}

// Clone returns a deep copy of the schema. Engine adaptations transform the
// copy so the canonical model stays untouched. Enums are shared: they are
// immutable once the model is built and adaptations never touch them.
func (s *Schema) Clone() *Schema {
	cp := NewSchema(s.Name)
	cp.SourceFile = s.SourceFile
	cp.Enums = append(cp.Enums, s.Enums...)
	for _, e := range s.Enums {
		cp.enumIndex[e.Name] = e
	}
	for _, t := range s.Tables {
		ct := &Table{
			Name:        t.Name,
			Options:     t.Options,
			columnIndex: make(map[string]*Column, len(t.Columns)),
		}
		for _, c := range t.Columns {
			cc := *c
			if c.Default != nil {
				def := *c.Default
				cc.Default = &def
			}
			ct.Columns = append(ct.Columns, &cc)
			ct.columnIndex[cc.Name] = &cc
		}
		for _, con := range t.Constraints {
			cc := *con
			cc.Columns = append([]string(nil), con.Columns...)
			cc.ReferencedColumns = append([]string(nil), con.ReferencedColumns...)
			ct.Constraints = append(ct.Constraints, &cc)
		}
		for _, idx := range t.Indexes {
			ci := *idx
			ci.Columns = append([]string(nil), idx.Columns...)
			ct.Indexes = append(ct.Indexes, &ci)
		}
		cp.Tables = append(cp.Tables, ct)
		cp.tableIndex[ct.Name] = ct
	}
	cp.Procedures = append(cp.Procedures, s.Procedures...)
	for _, p := range s.Procedures {
		cp.procIndex[p.Name] = p
	}
	return cp
}
