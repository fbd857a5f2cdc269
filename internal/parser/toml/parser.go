// Package toml loads ogma model files. A model is a TOML document declaring,
// in order, a schema name, enumerations, tables, and stored procedures.
// Include directives are rejected unless explicitly allowed, checked against
// the decoded document so string contents can never trip the guard, and
// decoding drives the core builder so every uniqueness invariant is enforced
// at declaration time. Nothing is cached between loads: every run re-reads
// and re-validates the model file.
package toml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ogma/internal/core"
)

// LoadOptions controls model loading.
type LoadOptions struct {
	// AllowIncludes permits include directives in the model source. Included
	// fragments are loaded with the same options and merged before the
	// including file's own declarations.
	AllowIncludes bool
}

// modelFile is the top-level TOML document.
type modelFile struct {
	Include    []string     `toml:"include"`
	Schema     modelSchema  `toml:"schema"`
	Enums      []modelEnum  `toml:"enums"`
	Tables     []modelTable `toml:"tables"`
	Procedures []modelProc  `toml:"procedures"`
}

type modelSchema struct {
	Name string `toml:"name"`
}

type modelEnum struct {
	Name   string   `toml:"name"`
	Values []string `toml:"values"`
}

type modelTable struct {
	Name        string            `toml:"name"`
	Columns     []modelColumn     `toml:"columns"`
	Constraints []modelConstraint `toml:"constraints"`
	Indexes     []modelIndex      `toml:"indexes"`
}

type modelColumn struct {
	Name          string `toml:"name"`
	Type          string `toml:"type"`
	Nullable      bool   `toml:"nullable"`
	Default       any    `toml:"default"`
	ServerDefault any    `toml:"server_default"`
	PrimaryKey    bool   `toml:"primary_key"`
	AutoIncrement bool   `toml:"auto_increment"`
	Unique        bool   `toml:"unique"`
	References    string `toml:"references"`
	OnDelete      string `toml:"on_delete"`
	OnUpdate      string `toml:"on_update"`
}

type modelConstraint struct {
	Name              string   `toml:"name"`
	Type              string   `toml:"type"`
	Columns           []string `toml:"columns"`
	References        string   `toml:"references"` // "table.column" for single-column FKs
	ReferencedTable   string   `toml:"referenced_table"`
	ReferencedColumns []string `toml:"referenced_columns"`
	OnDelete          string   `toml:"on_delete"`
	OnUpdate          string   `toml:"on_update"`
	Check             string   `toml:"check"`
}

type modelIndex struct {
	Name    string   `toml:"name"`
	Columns []string `toml:"columns"`
	Unique  bool     `toml:"unique"`
}

type modelProc struct {
	Name    string           `toml:"name"`
	Comment string           `toml:"comment"`
	Body    string           `toml:"body"`
	Params  []modelProcParam `toml:"params"`
}

type modelProcParam struct {
	Name      string `toml:"name"`
	Type      string `toml:"type"`
	Direction string `toml:"direction"`
}

// LoadFile reads the model file at path, runs the include sandbox check, and
// builds the schema object graph.
func LoadFile(path string, opts LoadOptions) (*core.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read file %q: %w", path, err)
	}
	return Load(string(data), path, opts)
}

// Load parses model source and builds the schema. The file name is recorded
// on the schema for error reporting only.
func Load(source, file string, opts LoadOptions) (*core.Schema, error) {
	mf, err := decode(source, file, opts)
	if err != nil {
		return nil, err
	}

	s := core.NewSchema(mf.Schema.Name)
	s.SourceFile = file
	if err := build(s, mf); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(source, file string, opts LoadOptions) (*modelFile, error) {
	var mf modelFile
	md, err := toml.Decode(source, &mf)
	if err != nil {
		return nil, fmt.Errorf("model: decode %s: %w", file, err)
	}

	// The sandbox check runs against the decoded document, not the raw text:
	// only a genuine top-level include key counts. The raw source is consulted
	// afterwards, purely to report the offending line.
	if !opts.AllowIncludes && md.IsDefined("include") {
		line, text, _ := locateIncludeDirective(source)
		return nil, &SandboxViolationError{File: file, Line: line, Source: text}
	}

	if len(mf.Include) == 0 {
		return &mf, nil
	}

	// Includes are merged in order, before the including file's own
	// declarations, so a fragment can define enums a model then uses.
	merged := modelFile{Schema: mf.Schema}
	dir := filepath.Dir(file)
	for _, inc := range mf.Include {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(dir, inc)
		}
		data, err := os.ReadFile(incPath)
		if err != nil {
			return nil, fmt.Errorf("model: read include %q: %w", inc, err)
		}
		frag, err := decode(string(data), incPath, opts)
		if err != nil {
			return nil, err
		}
		if merged.Schema.Name == "" {
			merged.Schema = frag.Schema
		}
		merged.Enums = append(merged.Enums, frag.Enums...)
		merged.Tables = append(merged.Tables, frag.Tables...)
		merged.Procedures = append(merged.Procedures, frag.Procedures...)
	}
	merged.Enums = append(merged.Enums, mf.Enums...)
	merged.Tables = append(merged.Tables, mf.Tables...)
	merged.Procedures = append(merged.Procedures, mf.Procedures...)
	return &merged, nil
}

func build(s *core.Schema, mf *modelFile) error {
	for i := range mf.Enums {
		me := &mf.Enums[i]
		if _, err := s.AddEnum(me.Name, me.Values...); err != nil {
			return err
		}
	}
	for i := range mf.Tables {
		if err := buildTable(s, &mf.Tables[i]); err != nil {
			return fmt.Errorf("model: table %q: %w", mf.Tables[i].Name, err)
		}
	}
	for i := range mf.Procedures {
		if err := buildProcedure(s, &mf.Procedures[i]); err != nil {
			return fmt.Errorf("model: procedure %q: %w", mf.Procedures[i].Name, err)
		}
	}
	return nil
}

func buildTable(s *core.Schema, mt *modelTable) error {
	t, err := s.AddTable(mt.Name)
	if err != nil {
		return err
	}

	var pkCols []string
	for i := range mt.Columns {
		mc := &mt.Columns[i]
		col, err := buildColumn(s, mc)
		if err != nil {
			return err
		}
		if err := t.AddColumn(col); err != nil {
			return err
		}
		if mc.PrimaryKey {
			pkCols = append(pkCols, mc.Name)
		}
		if mc.Unique {
			t.AddConstraint(&core.Constraint{
				Name:    fmt.Sprintf("uq_%s_%s", t.Name, mc.Name),
				Type:    core.ConstraintUnique,
				Columns: []string{mc.Name},
			})
		}
		if mc.References != "" {
			fk, err := inlineForeignKey(s, t.Name, mc)
			if err != nil {
				return err
			}
			t.AddConstraint(fk)
		}
	}

	if len(pkCols) > 0 {
		t.AddConstraint(&core.Constraint{Type: core.ConstraintPrimaryKey, Columns: pkCols})
	}

	for i := range mt.Constraints {
		con, err := buildConstraint(s, &mt.Constraints[i])
		if err != nil {
			return err
		}
		t.AddConstraint(con)
	}
	for i := range mt.Indexes {
		mi := &mt.Indexes[i]
		t.AddIndex(&core.Index{Name: mi.Name, Columns: mi.Columns, Unique: mi.Unique})
	}
	return nil
}

func buildColumn(s *core.Schema, mc *modelColumn) (*core.Column, error) {
	if mc.ServerDefault != nil {
		return nil, &core.ConfigurationError{
			Message: fmt.Sprintf("column %q: server_default should not be used directly, use default instead", mc.Name),
		}
	}

	col := &core.Column{
		Name:          mc.Name,
		Type:          resolveType(s, mc.Type),
		Nullable:      mc.Nullable,
		AutoIncrement: mc.AutoIncrement,
		PrimaryKey:    mc.PrimaryKey,
		Unique:        mc.Unique,
	}
	if mc.Default != nil {
		expr, err := core.DefaultExpr(mc.Default)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", mc.Name, err)
		}
		col.Default = &expr
	}
	return col, nil
}

// resolveType maps a model type string to the closed column type set: a
// declared enum name, boolean, a binary family type, or raw passthrough.
func resolveType(s *core.Schema, raw string) core.ColumnType {
	if e := s.Enum(raw); e != nil {
		return e.Type()
	}
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case lower == "bool" || lower == "boolean":
		return core.BooleanType()
	case strings.HasPrefix(lower, "binary") || strings.HasPrefix(lower, "varbinary") || strings.HasPrefix(lower, "blob"):
		return core.BinaryType(strings.ToUpper(raw))
	default:
		return core.RawType(raw)
	}
}

func inlineForeignKey(s *core.Schema, table string, mc *modelColumn) (*core.Constraint, error) {
	refTable, refColumn, err := s.ColumnRef(mc.References)
	if err != nil {
		return nil, err
	}
	fk := &core.Constraint{
		Name:              fmt.Sprintf("fk_%s_%s", table, mc.Name),
		Type:              core.ConstraintForeignKey,
		Columns:           []string{mc.Name},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
	}
	if fk.OnDelete, err = refAction(mc.OnDelete); err != nil {
		return nil, fmt.Errorf("column %q: %w", mc.Name, err)
	}
	if fk.OnUpdate, err = refAction(mc.OnUpdate); err != nil {
		return nil, fmt.Errorf("column %q: %w", mc.Name, err)
	}
	return fk, nil
}

func buildConstraint(s *core.Schema, mc *modelConstraint) (*core.Constraint, error) {
	con := &core.Constraint{
		Name:            mc.Name,
		Columns:         mc.Columns,
		CheckExpression: mc.Check,
	}

	switch strings.ToUpper(strings.TrimSpace(mc.Type)) {
	case "PRIMARY KEY", "PRIMARY_KEY":
		con.Type = core.ConstraintPrimaryKey
	case "UNIQUE":
		con.Type = core.ConstraintUnique
	case "CHECK":
		con.Type = core.ConstraintCheck
	case "FOREIGN KEY", "FOREIGN_KEY":
		con.Type = core.ConstraintForeignKey
		if mc.References != "" {
			refTable, refColumn, err := s.ColumnRef(mc.References)
			if err != nil {
				return nil, err
			}
			con.ReferencedTable = refTable
			con.ReferencedColumns = []string{refColumn}
		} else {
			con.ReferencedTable = mc.ReferencedTable
			con.ReferencedColumns = mc.ReferencedColumns
		}
	default:
		return nil, fmt.Errorf("unsupported constraint type %q", mc.Type)
	}

	var err error
	if con.OnDelete, err = refAction(mc.OnDelete); err != nil {
		return nil, err
	}
	if con.OnUpdate, err = refAction(mc.OnUpdate); err != nil {
		return nil, err
	}
	return con, nil
}

func refAction(raw string) (core.ReferentialAction, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return core.RefActionNone, nil
	case "CASCADE":
		return core.RefActionCascade, nil
	case "RESTRICT":
		return core.RefActionRestrict, nil
	case "SET NULL", "SET_NULL":
		return core.RefActionSetNull, nil
	default:
		return core.RefActionNone, fmt.Errorf("unsupported referential action %q", raw)
	}
}

func buildProcedure(s *core.Schema, mp *modelProc) error {
	sp := &core.StoredProcedure{
		Name:    mp.Name,
		Comment: mp.Comment,
		Body:    mp.Body,
	}
	for _, p := range mp.Params {
		if !core.IsValidParamDirection(p.Direction) {
			return fmt.Errorf("param %q: unsupported direction %q", p.Name, p.Direction)
		}
		sp.Params = append(sp.Params, core.ProcParam{
			Name:      p.Name,
			Type:      p.Type,
			Direction: core.ParamDirection(strings.ToUpper(strings.TrimSpace(p.Direction))),
		})
	}
	return s.AddProcedure(sp)
}
