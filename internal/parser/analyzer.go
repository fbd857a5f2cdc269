// Package parser provides static SQL analysis for the model pipeline. Stored
// procedure bodies are plain SQL supplied by the model author; parsing them
// with TiDB's AST parser catches syntax errors at model-build time, before
// any DDL or artifact generation runs.
package parser

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // required to register TiDB parser driver implementations

	"ogma/internal/core"
)

// ProcedureAnalyzer statically checks stored procedure bodies.
type ProcedureAnalyzer struct {
	parser *parser.Parser
}

// NewProcedureAnalyzer creates a new AST-based procedure analyzer.
func NewProcedureAnalyzer() *ProcedureAnalyzer {
	return &ProcedureAnalyzer{parser: parser.New()}
}

// CheckProcedure parses every statement of the procedure body and returns an
// error naming the procedure and the failing statement.
func (a *ProcedureAnalyzer) CheckProcedure(sp *core.StoredProcedure) error {
	for _, stmt := range sp.BodyStatements() {
		if _, _, err := a.parser.Parse(stmt, "", ""); err != nil {
			return fmt.Errorf("procedure %q: invalid SQL statement %q: %w", sp.Name, stmt, err)
		}
	}
	return nil
}

// CheckSchema runs CheckProcedure over every stored procedure of the schema.
func (a *ProcedureAnalyzer) CheckSchema(s *core.Schema) error {
	for _, sp := range s.Procedures {
		if err := a.CheckProcedure(sp); err != nil {
			return err
		}
	}
	return nil
}
