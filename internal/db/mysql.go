// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"chatdb/cli/internal/dsn"
	"chatdb/cli/internal/logging"
)

// mysqlAdapter runs every statement on one pinned *sql.Conn so that session
// state (open transactions, variables) survives across REPL iterations.
type mysqlAdapter struct {
	db   *sql.DB
	conn *sql.Conn
}

func connectMySQL(ctx context.Context, connString string) (Adapter, error) {
	pool, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	// One interactive session, one connection.
	pool.SetMaxOpenConns(1)

	conn, err := pool.Conn(ctx)
	if err != nil {
		pool.Close()
		return nil, wrapMySQLError(err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		pool.Close()
		return nil, wrapMySQLError(err)
	}
	return &mysqlAdapter{db: pool, conn: conn}, nil
}

// newMySQLAdapter wraps an existing pool and connection. Used by tests.
func newMySQLAdapter(pool *sql.DB, conn *sql.Conn) *mysqlAdapter {
	return &mysqlAdapter{db: pool, conn: conn}
}

func (m *mysqlAdapter) Driver() dsn.Driver { return dsn.DriverMySQL }

func (m *mysqlAdapter) Execute(ctx context.Context, query string) (*Result, error) {
	logging.Debugf("mysql execute: %s", query)

	if returnsRows(query) {
		rows, err := m.conn.QueryContext(ctx, query)
		if err != nil {
			return nil, wrapMySQLError(err)
		}
		defer rows.Close()
		return scanRows(rows)
	}

	res, err := m.conn.ExecContext(ctx, query)
	if err != nil {
		return nil, wrapMySQLError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &Result{RowsAffected: affected}, nil
}

func (m *mysqlAdapter) Commit(ctx context.Context) error {
	_, err := m.conn.ExecContext(ctx, "COMMIT")
	return wrapMySQLError(err)
}

func (m *mysqlAdapter) Rollback(ctx context.Context) error {
	_, err := m.conn.ExecContext(ctx, "ROLLBACK")
	return wrapMySQLError(err)
}

func (m *mysqlAdapter) Ping(ctx context.Context) error {
	return wrapMySQLError(m.conn.PingContext(ctx))
}

func (m *mysqlAdapter) Close() error {
	if m.conn != nil {
		m.conn.Close()
	}
	return m.db.Close()
}

// scanRows drains a *sql.Rows into a normalized Result.
func scanRows(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapMySQLError(err)
	}

	out := &Result{Columns: cols, HasRows: true}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrapMySQLError(err)
		}
		for i := range cells {
			cells[i] = normalizeValue(cells[i])
		}
		out.Rows = append(out.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapMySQLError(err)
	}
	return out, nil
}

// wrapMySQLError converts driver errors into *QueryError with the server's
// error number when available.
func wrapMySQLError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return &QueryError{
			Message: me.Message,
			Code:    strconv.Itoa(int(me.Number)),
			Err:     err,
		}
	}
	return &QueryError{Message: err.Error(), Err: err}
}
