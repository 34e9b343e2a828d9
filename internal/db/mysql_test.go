// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newMockAdapter(t *testing.T) (*mysqlAdapter, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	conn, err := pool.Conn(context.Background())
	if err != nil {
		t.Fatalf("pool.Conn() error = %v", err)
	}
	t.Cleanup(func() { conn.Close(); pool.Close() })
	return newMySQLAdapter(pool, conn), mock
}

func assertExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecuteSelectReturnsRows(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectQuery("SELECT \\* FROM startups").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Acme").
			AddRow(2, "Globex"))

	res, err := a.Execute(context.Background(), "SELECT * FROM startups")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.HasRows {
		t.Fatal("HasRows = false for SELECT")
	}
	if len(res.Columns) != 2 || res.Columns[0] != "id" || res.Columns[1] != "name" {
		t.Fatalf("Columns = %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(res.Rows))
	}
	// []byte cells must be normalized to string for rendering.
	if got, ok := res.Rows[0][1].(string); !ok || got != "Acme" {
		t.Fatalf("Rows[0][1] = %#v, want string Acme", res.Rows[0][1])
	}
	assertExpectations(t, mock)
}

func TestExecuteSelectZeroRowsKeepsHasRows(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := a.Execute(context.Background(), "SELECT id FROM startups WHERE 1=0")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.HasRows {
		t.Fatal("HasRows = false for an empty SELECT result")
	}
	if len(res.Rows) != 0 {
		t.Fatalf("Rows = %d, want 0", len(res.Rows))
	}
	assertExpectations(t, mock)
}

func TestExecuteInsertReportsAffectedRows(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectExec("INSERT INTO startups").
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := a.Execute(context.Background(), "INSERT INTO startups VALUES (1), (2), (3)")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.HasRows {
		t.Fatal("HasRows = true for INSERT")
	}
	if res.RowsAffected != 3 {
		t.Fatalf("RowsAffected = %d, want 3", res.RowsAffected)
	}
	assertExpectations(t, mock)
}

func TestExecuteServerErrorCarriesCode(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectQuery("SELECT").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'demo.missing' doesn't exist"})

	_, err := a.Execute(context.Background(), "SELECT * FROM missing")
	if err == nil {
		t.Fatal("Execute() expected error")
	}
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error type = %T, want *QueryError", err)
	}
	if qe.Code != "1146" {
		t.Fatalf("Code = %q, want 1146", qe.Code)
	}
	assertExpectations(t, mock)
}

func TestCommitRollbackPassThrough(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectExec("COMMIT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := a.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := a.Rollback(context.Background()); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	assertExpectations(t, mock)
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"SELECT\t1", true},
		{"SELECT\n  *\nFROM t", true},
		{"SHOW TABLES", true},
		{"DESCRIBE startups", true},
		{"EXPLAIN SELECT 1", true},
		{"WITH c AS (SELECT 1) SELECT * FROM c", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"DELETE FROM t", false},
		{"CREATE TABLE t (a INT)", false},
	}
	for _, tt := range tests {
		if got := returnsRows(tt.sql); got != tt.want {
			t.Errorf("returnsRows(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}
