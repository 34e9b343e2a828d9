// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema introspects the connected database and renders a compact
// text description of its tables for model prompting. The description is
// built once per session and is read-only afterward.
package schema

import (
	"context"
	"fmt"
	"strings"

	"chatdb/cli/internal/db"
	"chatdb/cli/internal/dsn"
	"chatdb/cli/internal/logging"
)

// Column is one table column with its declared type.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Key      string
}

// Table is a table with its ordered columns and an approximate row count.
// RowCount is -1 when counting failed; the description still renders.
type Table struct {
	Name     string
	Columns  []Column
	RowCount int64
}

// Description maps a database to its ordered tables.
type Description struct {
	Database string
	Tables   []Table
}

// Describe enumerates visible tables and their columns through the adapter.
// Failure here degrades natural-language mode only; SQL mode is unaffected.
func Describe(ctx context.Context, a db.Adapter, database string) (*Description, error) {
	names, err := listTables(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	d := &Description{Database: database}
	for _, name := range names {
		cols, err := describeColumns(ctx, a, name)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", name, err)
		}
		t := Table{Name: name, Columns: cols, RowCount: -1}
		if n, err := countRows(ctx, a, name); err == nil {
			t.RowCount = n
		} else {
			logging.Debugf("count rows for %s: %v", name, err)
		}
		d.Tables = append(d.Tables, t)
	}
	return d, nil
}

// TableNames returns the ordered table names.
func (d *Description) TableNames() []string {
	out := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		out[i] = t.Name
	}
	return out
}

// Text renders the description as a deterministic block for prompting.
func (d *Description) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s\n", d.Database)
	if len(d.Tables) == 0 {
		b.WriteString("No tables found in this database.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Tables: %d\n", len(d.Tables))
	for _, t := range d.Tables {
		fmt.Fprintf(&b, "\nTable: %s\nColumns:\n", t.Name)
		for _, c := range t.Columns {
			null := "NOT NULL"
			if c.Nullable {
				null = "NULL"
			}
			fmt.Fprintf(&b, "  - %s: %s (%s)", c.Name, c.Type, null)
			if c.Key != "" {
				fmt.Fprintf(&b, " [%s]", c.Key)
			}
			b.WriteString("\n")
		}
		if t.RowCount >= 0 {
			fmt.Fprintf(&b, "  Rows: %d\n", t.RowCount)
		}
	}
	return b.String()
}

func listTables(ctx context.Context, a db.Adapter) ([]string, error) {
	var q string
	switch a.Driver() {
	case dsn.DriverPostgres:
		q = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name`
	default:
		q = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME`
	}
	res, err := a.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range res.Rows {
		if len(row) > 0 {
			names = append(names, asString(row[0]))
		}
	}
	return names, nil
}

func describeColumns(ctx context.Context, a db.Adapter, table string) ([]Column, error) {
	var q string
	switch a.Driver() {
	case dsn.DriverPostgres:
		q = fmt.Sprintf(`SELECT column_name, data_type, is_nullable, '' AS column_key
FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = '%s'
ORDER BY ordinal_position`, escapeLiteral(table))
	default:
		q = fmt.Sprintf(`SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '%s'
ORDER BY ORDINAL_POSITION`, escapeLiteral(table))
	}
	res, err := a.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	var cols []Column
	for _, row := range res.Rows {
		if len(row) < 4 {
			continue
		}
		cols = append(cols, Column{
			Name:     asString(row[0]),
			Type:     asString(row[1]),
			Nullable: strings.EqualFold(asString(row[2]), "YES"),
			Key:      asString(row[3]),
		})
	}
	return cols, nil
}

func countRows(ctx context.Context, a db.Adapter, table string) (int64, error) {
	res, err := a.Execute(ctx, "SELECT COUNT(*) FROM "+quoteIdent(a.Driver(), table))
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return 0, fmt.Errorf("empty count result")
	}
	return asInt64(res.Rows[0][0])
}

// escapeLiteral doubles single quotes for embedding identifiers coming from
// information_schema into string literals.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quoteIdent(driver dsn.Driver, name string) string {
	if driver == dsn.DriverPostgres {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case string:
		var out int64
		_, err := fmt.Sscan(n, &out)
		return out, err
	case []byte:
		var out int64
		_, err := fmt.Sscan(string(n), &out)
		return out, err
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}
