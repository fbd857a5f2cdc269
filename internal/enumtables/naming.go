// Package enumtables materializes enumeration lookup tables and readable
// views in a live MySQL database. Each declared enumeration gets a two-column
// lookup table mapping ordinal values to symbolic names, and each table with
// enum-typed columns gets a view joining those names in.
package enumtables

import (
	"regexp"
	"strings"
)

var (
	reCamelBoundary   = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	reLowerDigitUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// CamelToSnake converts a CamelCase identifier to snake_case. Acronym runs
// stay together: "HTTPStatus" becomes "http_status".
func CamelToSnake(name string) string {
	s := reCamelBoundary.ReplaceAllString(name, "${1}_${2}")
	s = reLowerDigitUpper.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// LookupTableName returns the lookup table name for an enumeration.
func LookupTableName(enumName string) string {
	return "enum_" + CamelToSnake(enumName)
}

// ViewName returns the name of the readable view generated for a table.
func ViewName(tableName string) string {
	return "enumed_" + tableName + "_view"
}
