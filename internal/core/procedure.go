package core

import (
	"fmt"
	"strings"
)

// ParamDirection is the direction of a stored procedure parameter.
type ParamDirection string

const (
	In    ParamDirection = "IN"
	Out   ParamDirection = "OUT"
	InOut ParamDirection = "INOUT"
)

// IsValidParamDirection reports whether d is a recognized direction string.
func IsValidParamDirection(d string) bool {
	switch ParamDirection(strings.ToUpper(strings.TrimSpace(d))) {
	case In, Out, InOut:
		return true
	}
	return false
}

// ProcParam is a single parameter of a stored procedure.
type ProcParam struct {
	Name      string
	Type      string // raw SQL type text, e.g. "BIGINT"
	Direction ParamDirection
}

// SQL returns the parameter's representation inside the procedure signature.
func (p ProcParam) SQL() string {
	return fmt.Sprintf("%s %s %s", p.Direction, p.Name, p.Type)
}

// StoredProcedure models a SQL stored procedure declared by the model file.
// Procedures are collected at the schema level in declaration order.
type StoredProcedure struct {
	Name    string
	Params  []ProcParam
	Comment string
	Body    string // raw SQL body; indentation is normalized on render
}

// SQL returns the CREATE OR REPLACE statement for the procedure. The body is
// dedented and re-indented so model files can use any leading whitespace.
func (sp *StoredProcedure) SQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE OR REPLACE PROCEDURE ")
	sb.WriteString(sp.Name)
	sb.WriteString("(")
	if len(sp.Params) > 0 {
		params := make([]string, len(sp.Params))
		for i, p := range sp.Params {
			params[i] = p.SQL()
		}
		sb.WriteString("\n")
		sb.WriteString(indent(strings.Join(params, ",\n"), 4))
		sb.WriteString("\n")
	}
	sb.WriteString(")\nLANGUAGE SQL")
	if sp.Comment != "" {
		sb.WriteString("\nCOMMENT '")
		sb.WriteString(strings.ReplaceAll(sp.Comment, "'", "''"))
		sb.WriteString("'")
	}
	sb.WriteString("\nBEGIN\n")
	sb.WriteString(indent(dedent(sp.Body), 4))
	sb.WriteString("\nEND\n")
	return sb.String()
}

// CreationStatement wraps SQL with delimiter-change markers. Procedure bodies
// contain statement terminators that would otherwise truncate a script.
func (sp *StoredProcedure) CreationStatement() string {
	return strings.Join([]string{"DELIMITER //", sp.SQL() + "\n//", "DELIMITER ;"}, "\n")
}

// BodyStatements splits the procedure body into individual SQL statements.
func (sp *StoredProcedure) BodyStatements() []string {
	var statements []string
	for _, stmt := range strings.Split(sp.Body, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// dedent removes the longest common leading whitespace from all non-blank
// lines, plus leading and trailing blank lines.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		lead := len(line) - len(trimmed)
		if margin < 0 || lead < margin {
			margin = lead
		}
	}
	if margin > 0 {
		for i, line := range lines {
			if len(line) >= margin {
				lines[i] = line[margin:]
			} else {
				lines[i] = strings.TrimLeft(line, " \t")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func indent(s string, width int) string {
	pad := strings.Repeat(" ", width)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
