// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package nlq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{
			name: "fenced block with language tag",
			in:   "```sql\nSELECT 1;\n```",
			want: "SELECT 1",
		},
		{
			name: "fenced block without language tag",
			in:   "```\nSELECT * FROM startups;\n```",
			want: "SELECT * FROM startups",
		},
		{
			name: "fence wrapped in prose",
			in:   "Here is the query you asked for:\n```sql\nSELECT name FROM startups WHERE funding > 1000000;\n```\nLet me know if you need anything else!",
			want: "SELECT name FROM startups WHERE funding > 1000000",
		},
		{
			name: "only first fenced block is used",
			in:   "```sql\nSELECT 1;\n```\nAlternatively:\n```sql\nSELECT 2;\n```",
			want: "SELECT 1",
		},
		{
			name: "bare SQL without fences",
			in:   "SELECT COUNT(*) FROM startups",
			want: "SELECT COUNT(*) FROM startups",
		},
		{
			name: "bare SQL with trailing terminator and whitespace",
			in:   "  SELECT id FROM startups;  \n",
			want: "SELECT id FROM startups",
		},
		{
			name: "multi-line statement inside fence",
			in:   "```sql\nSELECT id,\n       name\nFROM startups;\n```",
			want: "SELECT id,\n       name\nFROM startups",
		},
		{
			name: "unterminated fence still yields inner text",
			in:   "```sql\nSELECT 1;",
			want: "SELECT 1",
		},
		{
			name:    "prose without SQL",
			in:      "I'm sorry, I cannot answer that question.",
			wantErr: ErrNoSQL,
		},
		{
			name:    "empty response",
			in:      "",
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "whitespace only",
			in:      "   \n\t",
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "fence containing no SQL",
			in:      "```\nnot a query\n```",
			wantErr: ErrNoSQL,
		},
		{
			name: "update statement",
			in:   "UPDATE startups SET funding = 0;",
			want: "UPDATE startups SET funding = 0",
		},
		{
			name: "cte statement",
			in:   "WITH top AS (SELECT 1) SELECT * FROM top",
			want: "WITH top AS (SELECT 1) SELECT * FROM top",
		},
		{
			name: "tab after verb",
			in:   "SELECT\t1",
			want: "SELECT\t1",
		},
		{
			name: "carriage return after verb",
			in:   "SELECT\r\n1",
			want: "SELECT\r\n1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	schemaText := "Database: demo\n\nTable: startups\nColumns:\n  - id: int(11) (NOT NULL)\n"
	s1, u1 := BuildPrompt(schemaText, "Show me all startups")
	s2, u2 := BuildPrompt(schemaText, "Show me all startups")
	assert.Equal(t, s1, s2)
	assert.Equal(t, u1, u2)
	assert.Contains(t, s1, "startups")
	assert.Contains(t, u1, "Show me all startups")
}

func TestBuildPromptContainsEveryTableName(t *testing.T) {
	schemaText := "Table: startups\nTable: founders\nTable: funding_rounds\n"
	system, _ := BuildPrompt(schemaText, "anything")
	for _, name := range []string{"startups", "founders", "funding_rounds"} {
		assert.Contains(t, system, name)
	}
}

func TestBuildPromptEmptySchema(t *testing.T) {
	system, _ := BuildPrompt("", "count things")
	assert.Contains(t, system, "No schema information available.")
}
