// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdb/cli/internal/db"
)

func TestTableSelectShape(t *testing.T) {
	res := &db.Result{
		HasRows: true,
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{int64(1), "Acme"},
			{int64(2), "Globex Corporation"},
		},
	}

	out := Table(res)
	lines := strings.Split(out, "\n")

	// Header, separator rule, N data lines, blank line, count line.
	require.Len(t, lines, 2+len(res.Rows)+2)
	assert.Equal(t, "(2 row(s) returned)", lines[len(lines)-1])

	// Column width follows the widest cell; header cells align with data.
	assert.True(t, strings.HasPrefix(lines[0], "id | name"))
	assert.Contains(t, lines[2], "1  | Acme")
	assert.Contains(t, lines[3], "2  | Globex Corporation")

	// Separator rule spans the header width.
	assert.Equal(t, strings.Repeat("-", len(lines[0])), lines[1])
}

func TestTableHeaderWiderThanCells(t *testing.T) {
	res := &db.Result{
		HasRows: true,
		Columns: []string{"total"},
		Rows:    [][]any{{int64(2)}},
	}

	out := Table(res)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "total", lines[0])
	assert.Equal(t, "2    ", lines[2])
	assert.Equal(t, "(1 row(s) returned)", lines[len(lines)-1])
}

func TestTableZeroRowSelect(t *testing.T) {
	res := &db.Result{HasRows: true, Columns: []string{"id"}}
	out := Table(res)
	assert.Equal(t, "Query executed successfully. No rows returned.", out)
	// Never a header with no body.
	assert.NotContains(t, out, "id")
}

func TestTableAffectedRows(t *testing.T) {
	res := &db.Result{RowsAffected: 3}
	assert.Equal(t, "Query executed successfully. 3 row(s) affected.", Table(res))
}

func TestTableNullCells(t *testing.T) {
	res := &db.Result{
		HasRows: true,
		Columns: []string{"id", "note"},
		Rows: [][]any{
			{int64(1), nil},
			{nil, "x"},
		},
	}

	out := Table(res)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	// NULLs render as an empty placeholder, padded to column width.
	assert.Equal(t, "1  |", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "| x", strings.TrimSpace(lines[3]))
}

func TestTableNilResult(t *testing.T) {
	assert.Equal(t, "", Table(nil))
}
