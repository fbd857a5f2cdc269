package core

import "strings"

// Characters that can never appear in a schema name. A dot is rejected
// separately because it doubles as the type separator in generated packages.
const schemaNameBlacklist = `-^<>/\'"{}[]~` + "`"

// Validate checks the schema-level naming rules after the model object graph
// exists and before any backend consumes it: the schema name must have been
// set exactly once and must not contain blacklisted characters, a dot, or a
// path separator.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &MissingSchemaNameError{File: s.SourceFile}
	}
	if strings.ContainsAny(s.Name, schemaNameBlacklist) || strings.Contains(s.Name, ".") {
		return &InvalidSchemaNameError{Name: s.Name, File: s.SourceFile}
	}
	return nil
}
