package db

import (
	"context"
	"regexp"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDSN(t *testing.T) {
	s := Settings{Host: "dbhost", Port: 3307, User: "root", Password: "secret", Name: "shop"}

	assert.Equal(t, "root:secret@tcp(dbhost:3307)/shop?parseTime=true", s.DSN())
	assert.Equal(t, "root:secret@tcp(dbhost:3307)/?parseTime=true", s.ServerDSN())
}

func TestNewDatabaseName(t *testing.T) {
	name := NewDatabaseName()
	assert.Regexp(t, regexp.MustCompile(`^ogma_db__\d{8}_\d{6}_[0-9a-f]{8}$`), name)

	other := NewDatabaseName()
	assert.NotEqual(t, name, other, "names must be unique across calls")
}

func TestConnectInvalidDSN(t *testing.T) {
	_, err := Connect(context.Background(), "invalid:user@tcp(127.0.0.1:1)/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}
