package toml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ogma/internal/core"
)

const shopModel = `
[schema]
name = "Shop"

[[enums]]
name = "OrderStatus"
values = ["pending", "shipped", "delivered"]

[[tables]]
name = "customers"

[[tables.columns]]
name = "id"
type = "BIGINT"
primary_key = true
auto_increment = true

[[tables.columns]]
name = "email"
type = "VARCHAR(255)"
unique = true

[[tables]]
name = "orders"

[[tables.columns]]
name = "id"
type = "BIGINT"
primary_key = true

[[tables.columns]]
name = "status"
type = "OrderStatus"
default = 0

[[tables.columns]]
name = "paid"
type = "boolean"
default = false

[[tables.columns]]
name = "customer_id"
type = "BIGINT"
references = "customers.id"
on_delete = "CASCADE"

[[tables.indexes]]
name = "ix_orders_status"
columns = ["status"]

[[procedures]]
name = "order_count"
comment = "Number of orders"
body = "SELECT COUNT(*) FROM orders;"

[[procedures.params]]
name = "total"
type = "INT"
direction = "OUT"
`

func TestLoadShopModel(t *testing.T) {
	s, err := Load(shopModel, "shop.toml", LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Shop", s.Name)
	assert.Equal(t, "shop.toml", s.SourceFile)
	require.Len(t, s.Enums, 1)
	require.Len(t, s.Tables, 2)
	require.Len(t, s.Procedures, 1)

	orders := s.Table("orders")
	require.NotNil(t, orders)

	status := orders.FindColumn("status")
	require.NotNil(t, status)
	assert.Equal(t, core.TypeEnum, status.Type.Kind)
	require.NotNil(t, status.Default)
	assert.Equal(t, "0", *status.Default)

	paid := orders.FindColumn("paid")
	require.NotNil(t, paid)
	assert.Equal(t, core.TypeBoolean, paid.Type.Kind)
	require.NotNil(t, paid.Default)
	assert.Equal(t, "FALSE", *paid.Default)

	id := s.Table("customers").FindColumn("id")
	require.NotNil(t, id)
	assert.True(t, id.AutoIncrement)
}

func TestLoadDerivedConstraints(t *testing.T) {
	s, err := Load(shopModel, "shop.toml", LoadOptions{})
	require.NoError(t, err)

	customers := s.Table("customers")
	var unique *core.Constraint
	for _, c := range customers.Constraints {
		if c.Type == core.ConstraintUnique {
			unique = c
		}
	}
	require.NotNil(t, unique)
	assert.Equal(t, "uq_customers_email", unique.Name)

	orders := s.Table("orders")
	var fk *core.Constraint
	for _, c := range orders.Constraints {
		if c.Type == core.ConstraintForeignKey {
			fk = c
		}
	}
	require.NotNil(t, fk)
	assert.Equal(t, "fk_orders_customer_id", fk.Name)
	assert.Equal(t, "customers", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Equal(t, core.RefActionCascade, fk.OnDelete)

	pk := orders.PrimaryKey()
	require.NotNil(t, pk)
	assert.Equal(t, []string{"id"}, pk.Columns)
}

func TestLoadEnumColumnCheckConstraint(t *testing.T) {
	s, err := Load(shopModel, "shop.toml", LoadOptions{})
	require.NoError(t, err)

	var check *core.Constraint
	for _, c := range s.Table("orders").Constraints {
		if c.Type == core.ConstraintCheck {
			check = c
		}
	}
	require.NotNil(t, check)
	assert.Equal(t, "ck_orders_status", check.Name)
	assert.Equal(t, "status in (0,1,2)", check.CheckExpression)
}

func TestLoadUnknownForeignKeyReference(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[tables]]
name = "orders"

[[tables.columns]]
name = "customer_id"
type = "BIGINT"
references = "customers.id"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	assert.ErrorContains(t, err, "unknown table")
}

func TestLoadServerDefaultRejected(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[tables]]
name = "orders"

[[tables.columns]]
name = "status"
type = "INT"
server_default = "0"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "server_default")
}

func TestLoadDuplicateTable(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[tables]]
name = "orders"

[[tables]]
name = "orders"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	var dupErr *core.DuplicateDefinitionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "table", dupErr.Kind)
}

func TestLoadDuplicateProcedure(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[procedures]]
name = "order_count"
body = "SELECT COUNT(*) FROM orders;"

[[procedures]]
name = "order_count"
body = "SELECT 1;"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	var dupErr *core.DuplicateDefinitionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "procedure", dupErr.Kind)
	assert.Equal(t, "order_count", dupErr.Name)
}

func TestSandboxRejectsIncludes(t *testing.T) {
	source := `# model with an include directive
include = ["fragment.toml"]

[schema]
name = "Shop"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	var violation *SandboxViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, 2, violation.Line)
	assert.Equal(t, `include = ["fragment.toml"]`, violation.Source)
	assert.Contains(t, err.Error(), "line 2")
}

func TestSandboxIgnoresIncludeInsideProcedureBody(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[procedures]]
name = "annotated"
body = """
SELECT 1;
-- the next line is ordinary text, not a directive
include = "this is just text inside the body"
"""
`
	s, err := Load(source, "shop.toml", LoadOptions{})
	require.NoError(t, err, "string contents must never trip the include guard")
	require.Len(t, s.Procedures, 1)
	assert.Contains(t, s.Procedures[0].Body, "include =")
}

func TestSandboxAllowsIncludeLikeColumnNames(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[tables]]
name = "documents"

[[tables.columns]]
name = "included"
type = "BOOL"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	assert.NoError(t, err)
}

func TestLoadFileWithIncludes(t *testing.T) {
	dir := t.TempDir()

	fragment := `
[[enums]]
name = "Color"
values = ["red", "green"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "colors.toml"), []byte(fragment), 0o644))

	model := `
include = ["colors.toml"]

[schema]
name = "Paint"

[[tables]]
name = "swatches"

[[tables.columns]]
name = "color"
type = "Color"
`
	modelPath := filepath.Join(dir, "model.toml")
	require.NoError(t, os.WriteFile(modelPath, []byte(model), 0o644))

	_, err := LoadFile(modelPath, LoadOptions{})
	var violation *SandboxViolationError
	require.ErrorAs(t, err, &violation, "includes must be an explicit opt-in")

	s, err := LoadFile(modelPath, LoadOptions{AllowIncludes: true})
	require.NoError(t, err)
	assert.Equal(t, "Paint", s.Name)
	require.NotNil(t, s.Enum("Color"))
	assert.Equal(t, core.TypeEnum, s.Table("swatches").FindColumn("color").Type.Kind)
}

func TestLoadProcedureDirectionValidation(t *testing.T) {
	source := `
[schema]
name = "Shop"

[[procedures]]
name = "bad"
body = "SELECT 1;"

[[procedures.params]]
name = "x"
type = "INT"
direction = "SIDEWAYS"
`
	_, err := Load(source, "shop.toml", LoadOptions{})
	assert.ErrorContains(t, err, "unsupported direction")
}

func TestResolveTypeFamilies(t *testing.T) {
	s := core.NewSchema("Shop")
	_, err := s.AddEnum("Color", "red")
	require.NoError(t, err)

	assert.Equal(t, core.TypeEnum, resolveType(s, "Color").Kind)
	assert.Equal(t, core.TypeBoolean, resolveType(s, "bool").Kind)
	assert.Equal(t, core.TypeBoolean, resolveType(s, "BOOLEAN").Kind)
	assert.Equal(t, core.TypeBinary, resolveType(s, "VARBINARY(255)").Kind)
	assert.Equal(t, core.TypeBinary, resolveType(s, "blob").Kind)
	assert.Equal(t, core.TypeOther, resolveType(s, "DATETIME").Kind)
}
