// Package db holds connection settings and database lifecycle helpers for
// working against a live MySQL server: creating and dropping databases,
// generating unique scratch database names, and executing a compiled schema.
package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"ogma/internal/core"
	"ogma/internal/dialect"
)

// Settings describes how to reach a MySQL server and which database to use.
type Settings struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// DSN returns the go-sql-driver connection string for the named database.
func (s Settings) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", s.User, s.Password, s.Host, s.Port, s.Name)
}

// ServerDSN returns a connection string without a database selected, for
// server-level operations such as CREATE DATABASE.
func (s Settings) ServerDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?parseTime=true", s.User, s.Password, s.Host, s.Port)
}

// NewDatabaseName returns a unique scratch database name. The UTC timestamp
// keeps names sortable; the random suffix keeps concurrent runs apart.
func NewDatabaseName() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("ogma_db__%s_%s", time.Now().UTC().Format("20060102_150405"), hex.EncodeToString(buf))
}

// Connect opens a connection with the given DSN and pings it.
// If something went wrong, returns an error, otherwise nil.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return db, nil
}

// CreateDatabase creates the named database on the server.
func CreateDatabase(ctx context.Context, settings Settings, compiler dialect.Compiler) error {
	conn, err := Connect(ctx, settings.ServerDSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt := fmt.Sprintf("CREATE DATABASE %s", compiler.QuoteIdentifier(settings.Name))
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create database %q: %w", settings.Name, err)
	}
	return nil
}

// DropDatabase drops the named database if it exists.
func DropDatabase(ctx context.Context, settings Settings, compiler dialect.Compiler) error {
	conn, err := Connect(ctx, settings.ServerDSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS %s", compiler.QuoteIdentifier(settings.Name))
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop database %q: %w", settings.Name, err)
	}
	return nil
}

// CreateSchema executes the compiled table-creation statements in dependency
// order, then the post-creation hooks, against an open connection.
func CreateSchema(ctx context.Context, conn *sql.DB, compiler dialect.Compiler, s *core.Schema) error {
	statements, err := compiler.CreateStatements(s)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	for _, hook := range compiler.PostCreateHooks(s) {
		if _, err := conn.ExecContext(ctx, hook); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(hook), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
