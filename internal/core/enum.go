package core

import (
	"fmt"
	"regexp"
	"strings"
)

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Enum is an integer-backed database enumeration. Values are assigned
// increasing numeric codes in declaration order, starting at 0.
type Enum struct {
	Name   string
	Values []string

	valueIndex map[string]int
}

// NewEnum creates an enum with the given values. It is normally called
// through Schema.AddEnum so the schema-level uniqueness check runs first.
func NewEnum(name string, values ...string) (*Enum, error) {
	e := &Enum{
		Name:       name,
		valueIndex: make(map[string]int, len(values)),
	}
	for _, v := range values {
		if err := e.AddValue(v); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddValue appends a value name and assigns it the next numeric code.
func (e *Enum) AddValue(name string) error {
	if !reIdentifier.MatchString(name) {
		return &ConfigurationError{Message: fmt.Sprintf("enum %s: value %q is not a valid identifier", e.Name, name)}
	}
	if _, ok := e.valueIndex[name]; ok {
		return &DuplicateDefinitionError{Kind: "enum value", Name: name, Scope: "enum " + e.Name}
	}
	e.valueIndex[name] = len(e.Values)
	e.Values = append(e.Values, name)
	return nil
}

// Code returns the numeric code assigned to a value name.
func (e *Enum) Code(value string) (int, bool) {
	code, ok := e.valueIndex[value]
	return code, ok
}

// CheckConstraint derives the check constraint that restricts an enum-typed
// column to the enum's valid code range. The constraint name is deterministic
// from table and column so repeated compilations emit identical DDL.
func (e *Enum) CheckConstraint(table, column string) *Constraint {
	codes := make([]string, len(e.Values))
	for i := range e.Values {
		codes[i] = fmt.Sprintf("%d", i)
	}
	return &Constraint{
		Name:            fmt.Sprintf("ck_%s_%s", table, column),
		Type:            ConstraintCheck,
		CheckExpression: fmt.Sprintf("%s in (%s)", column, strings.Join(codes, ",")),
	}
}

// Type returns the enum-backed column type referencing this enum.
func (e *Enum) Type() ColumnType {
	return ColumnType{Kind: TypeEnum, Enum: e}
}

func (e *Enum) String() string {
	return fmt.Sprintf("Enum(%s, %s)", e.Name, strings.Join(e.Values, ", "))
}
