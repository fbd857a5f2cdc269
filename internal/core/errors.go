package core

import "fmt"

// DuplicateDefinitionError reports a name collision while building the model:
// an enum, table, column, procedure, or enum value declared twice.
type DuplicateDefinitionError struct {
	Kind  string // "enum", "table", "column", "enum value", "procedure"
	Name  string
	Scope string // owning entity name; empty for schema-level collisions
}

func (e *DuplicateDefinitionError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s %q already defined in %s", e.Kind, e.Name, e.Scope)
	}
	return fmt.Sprintf("%s %q already defined", e.Kind, e.Name)
}

// ConfigurationError reports misuse of the model builder API, e.g. supplying
// a raw server_default that bypasses literal wrapping.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// MissingSchemaNameError is returned when a model never declared its schema name.
type MissingSchemaNameError struct {
	File string
}

func (e *MissingSchemaNameError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("schema name is required in model files but could not be found in %s", e.File)
	}
	return "schema name is required but was not set"
}

// InvalidSchemaNameError is returned when the declared schema name contains
// blacklisted characters or a path/type separator.
type InvalidSchemaNameError struct {
	Name string
	File string
}

func (e *InvalidSchemaNameError) Error() string {
	msg := fmt.Sprintf("invalid schema name %q: a schema name cannot contain any of %s", e.Name, "."+schemaNameBlacklist)
	if e.File != "" {
		msg += fmt.Sprintf(" (found in %s)", e.File)
	}
	return msg
}
