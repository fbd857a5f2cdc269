package core

import "sort"

// TypeFamily selects which column type variants a mapping query returns.
type TypeFamily string

const (
	FamilyEnum    TypeFamily = "enum"
	FamilyBoolean TypeFamily = "boolean"
	FamilyBinary  TypeFamily = "binary"
)

// ColumnTypeName pairs a column with its mapped type name.
type ColumnTypeName struct {
	Column   string
	TypeName string
}

// TableTypes lists the mapped columns of one table.
type TableTypes struct {
	Table   string
	Columns []ColumnTypeName
}

// TypeMappings returns a table -> column -> type-name mapping for the
// requested type families, sorted by table name and then by column name so
// generated configuration is stable. Enum columns map to the enum's name;
// boolean and binary columns map to the fixed names BOOLEAN and BINARY.
func (s *Schema) TypeMappings(families ...TypeFamily) []TableTypes {
	if len(families) == 0 {
		families = []TypeFamily{FamilyEnum, FamilyBoolean}
	}
	wanted := make(map[TypeFamily]bool, len(families))
	for _, f := range families {
		wanted[f] = true
	}

	byTable := map[string]map[string]string{}
	s.VisitColumns(func(t *Table, c *Column) {
		var typeName string
		switch {
		case wanted[FamilyEnum] && c.Type.Kind == TypeEnum:
			typeName = c.Type.Enum.Name
		case wanted[FamilyBoolean] && c.Type.Kind == TypeBoolean:
			typeName = "BOOLEAN"
		case wanted[FamilyBinary] && c.Type.Kind == TypeBinary:
			typeName = "BINARY"
		default:
			return
		}
		if byTable[t.Name] == nil {
			byTable[t.Name] = map[string]string{}
		}
		byTable[t.Name][c.Name] = typeName
	})

	tableNames := make([]string, 0, len(byTable))
	for name := range byTable {
		tableNames = append(tableNames, name)
	}
	sort.Strings(tableNames)

	mappings := make([]TableTypes, 0, len(tableNames))
	for _, table := range tableNames {
		cols := byTable[table]
		colNames := make([]string, 0, len(cols))
		for name := range cols {
			colNames = append(colNames, name)
		}
		sort.Strings(colNames)

		tt := TableTypes{Table: table, Columns: make([]ColumnTypeName, 0, len(cols))}
		for _, col := range colNames {
			tt.Columns = append(tt.Columns, ColumnTypeName{Column: col, TypeName: cols[col]})
		}
		mappings = append(mappings, tt)
	}
	return mappings
}
