// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render formats normalized query results for terminal display.
package render

import (
	"fmt"
	"strings"

	"chatdb/cli/internal/db"
)

// Table renders a query result. Row-returning statements become an aligned
// table with a trailing row-count summary; zero-row results and
// row-affecting statements become a one-line message.
func Table(res *db.Result) string {
	if res == nil {
		return ""
	}
	if !res.HasRows {
		return fmt.Sprintf("Query executed successfully. %d row(s) affected.", res.RowsAffected)
	}
	if len(res.Rows) == 0 {
		return "Query executed successfully. No rows returned."
	}

	widths := columnWidths(res)

	var b strings.Builder
	header := formatRow(toCells(res.Columns), widths)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(header)))
	b.WriteString("\n")
	for _, row := range res.Rows {
		b.WriteString(formatRow(stringify(row), widths))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n(%d row(s) returned)", len(res.Rows))
	return b.String()
}

// columnWidths computes each column's printed width: the maximum of the
// header length and the widest stringified cell.
func columnWidths(res *db.Result) []int {
	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = len(col)
	}
	for _, row := range res.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := len(cellString(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		padded[i] = fmt.Sprintf("%-*s", w, c)
	}
	return strings.Join(padded, " | ")
}

func toCells(cols []string) []string {
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

func stringify(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = cellString(cell)
	}
	return out
}

// cellString renders one cell. NULLs become an empty placeholder so the
// table never panics on absent values.
func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
