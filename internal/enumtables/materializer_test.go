package enumtables

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"ogma/internal/core"
	"ogma/internal/dialect"
)

func setupMySQL(t *testing.T) (dsn string, db *sql.DB) {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("testdb"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err = mysqlContainer.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err = sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	return dsn, db
}

func buildMaterializeSchema(t *testing.T) *core.Schema {
	t.Helper()
	s := core.NewSchema("Shop")

	status, err := s.AddEnum("OrderStatus", "pending", "shipped", "delivered")
	require.NoError(t, err)

	orders, err := s.AddTable("orders")
	require.NoError(t, err)
	require.NoError(t, orders.AddColumn(&core.Column{Name: "id", Type: core.RawType("BIGINT"), AutoIncrement: true}))
	require.NoError(t, orders.AddColumn(&core.Column{Name: "status", Type: status.Type()}))
	orders.AddConstraint(&core.Constraint{Type: core.ConstraintPrimaryKey, Columns: []string{"id"}})
	return s
}

func TestMaterializeIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dsn, conn := setupMySQL(t)
	ctx := context.Background()
	s := buildMaterializeSchema(t)

	// The base table has to exist before the view can reference it.
	_, err := conn.ExecContext(ctx, "CREATE TABLE orders (id BIGINT NOT NULL AUTO_INCREMENT, status INTEGER NOT NULL, PRIMARY KEY (id))")
	require.NoError(t, err)

	var out bytes.Buffer
	m := NewMaterializer(Options{DSN: dsn, Dialect: dialect.MySQL, Out: &out, Verbose: true})
	require.NoError(t, m.Connect(ctx))
	t.Cleanup(func() {
		if err := m.Close(); err != nil {
			t.Errorf("failed to close materializer: %v", err)
		}
	})

	require.NoError(t, m.Materialize(ctx, s))
	assert.Contains(t, out.String(), "enum OrderStatus -> enum_order_status (3 values)")
	assert.Contains(t, out.String(), "shipped")

	t.Run("lookup table contents", func(t *testing.T) {
		rows, err := conn.QueryContext(ctx, "SELECT value, name FROM enum_order_status ORDER BY value")
		require.NoError(t, err)
		defer rows.Close()

		var got []string
		for rows.Next() {
			var value int
			var name string
			require.NoError(t, rows.Scan(&value, &name))
			got = append(got, name)
			assert.Equal(t, len(got)-1, value)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"pending", "shipped", "delivered"}, got)
	})

	t.Run("view joins enum names", func(t *testing.T) {
		_, err := conn.ExecContext(ctx, "INSERT INTO orders (status) VALUES (1)")
		require.NoError(t, err)

		var name string
		err = conn.QueryRowContext(ctx, "SELECT status_name FROM enumed_orders_view LIMIT 1").Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, "shipped", name)
	})

	t.Run("rerun is idempotent", func(t *testing.T) {
		require.NoError(t, m.Materialize(ctx, s))

		var count int
		err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM enum_order_status").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestMaterializerConnectInvalidDSN(t *testing.T) {
	m := NewMaterializer(Options{DSN: "invalid:user@tcp(127.0.0.1:1)/nope", Dialect: dialect.MySQL})
	err := m.Connect(context.Background())
	assert.Error(t, err)
	assert.NoError(t, m.Close())
}
