package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredProcedureSQL(t *testing.T) {
	sp := &StoredProcedure{
		Name:    "count_orders",
		Comment: "Counts a customer's orders",
		Params: []ProcParam{
			{Name: "customer", Type: "BIGINT", Direction: In},
			{Name: "total", Type: "INT", Direction: Out},
		},
		Body: `
			UPDATE counters SET n = n + 1 WHERE name = 'count_orders';
			SELECT COUNT(*) FROM orders WHERE customer_id = customer;
		`,
	}

	sql := sp.SQL()
	assert.Equal(t, `CREATE OR REPLACE PROCEDURE count_orders(
    IN customer BIGINT,
    OUT total INT
)
LANGUAGE SQL
COMMENT 'Counts a customer''s orders'
BEGIN
    UPDATE counters SET n = n + 1 WHERE name = 'count_orders';
    SELECT COUNT(*) FROM orders WHERE customer_id = customer;
END
`, sql)
}

func TestStoredProcedureSQLNoParams(t *testing.T) {
	sp := &StoredProcedure{Name: "noop", Body: "SELECT 1;"}

	sql := sp.SQL()
	assert.Contains(t, sql, "CREATE OR REPLACE PROCEDURE noop()")
	assert.NotContains(t, sql, "COMMENT")
}

func TestStoredProcedureCreationStatement(t *testing.T) {
	sp := &StoredProcedure{Name: "noop", Body: "SELECT 1;"}

	stmt := sp.CreationStatement()
	assert.True(t, len(stmt) > 0)
	assert.Contains(t, stmt, "DELIMITER //\n")
	assert.Contains(t, stmt, "\n//\nDELIMITER ;")
	assert.Contains(t, stmt, sp.SQL())
}

func TestStoredProcedureBodyStatements(t *testing.T) {
	sp := &StoredProcedure{
		Name: "two",
		Body: "SELECT 1;\n  SELECT 2;  \n;",
	}
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, sp.BodyStatements())
}

func TestIsValidParamDirection(t *testing.T) {
	assert.True(t, IsValidParamDirection("in"))
	assert.True(t, IsValidParamDirection(" OUT "))
	assert.True(t, IsValidParamDirection("InOut"))
	assert.False(t, IsValidParamDirection("through"))
	assert.False(t, IsValidParamDirection(""))
}

func TestProcParamSQL(t *testing.T) {
	p := ProcParam{Name: "customer", Type: "BIGINT", Direction: In}
	require.Equal(t, "IN customer BIGINT", p.SQL())
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "a\n  b", dedent("\n\t\t\ta\n\t\t\t  b\n\n"))
}
