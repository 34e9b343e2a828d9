// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package db provides the session-scoped database adapter for chatdb.
// It owns a single live connection, executes arbitrary SQL statements, and
// normalizes results so callers can tell row-returning statements from
// row-affecting ones without inspecting the SQL text.
//
// Two drivers are supported: MySQL via database/sql and go-sql-driver, and
// PostgreSQL via pgx. Both surface server errors as *QueryError carrying the
// vendor error code, never a panic.
package db

import (
	"context"
	"fmt"
	"strings"

	"chatdb/cli/internal/dsn"
)

// Result is a normalized statement outcome. HasRows distinguishes a
// row-returning statement (Columns/Rows populated, possibly empty) from one
// that only reports an affected-row count.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	HasRows      bool
}

// QueryError carries the server's message and vendor error code for a failed
// statement. Code is the MySQL error number or PostgreSQL SQLSTATE.
type QueryError struct {
	Message string
	Code    string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *QueryError) Unwrap() error { return e.Err }

// Adapter is the driver-agnostic session interface. Implementations own
// exactly one live connection; Close releases it and must be called once.
type Adapter interface {
	// Execute runs one SQL statement and normalizes its outcome.
	Execute(ctx context.Context, sql string) (*Result, error)
	// Commit passes COMMIT through to the server for user-managed transactions.
	Commit(ctx context.Context) error
	// Rollback passes ROLLBACK through to the server.
	Rollback(ctx context.Context) error
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Driver reports which driver backs this session.
	Driver() dsn.Driver
	// Close releases the connection.
	Close() error
}

// Connect opens a session for the given driver and connection string.
func Connect(ctx context.Context, driver dsn.Driver, connString string) (Adapter, error) {
	switch driver {
	case dsn.DriverMySQL:
		return connectMySQL(ctx, connString)
	case dsn.DriverPostgres:
		return connectPostgres(ctx, connString)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// rowVerbs are leading keywords of statements that produce a row set. Used
// only by the database/sql path, which must pick Query vs Exec up front.
var rowVerbs = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "TABLE", "VALUES"}

func returnsRows(sql string) bool {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return false
	}
	head := strings.ToUpper(fields[0])
	for _, v := range rowVerbs {
		if head == v {
			return true
		}
	}
	return false
}

// normalizeValue converts driver-specific cell values into display-friendly
// scalars. Byte slices become strings since every cell ends up stringified.
func normalizeValue(v any) any {
	switch b := v.(type) {
	case []byte:
		return string(b)
	default:
		return v
	}
}
