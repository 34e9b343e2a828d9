// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package nlq implements the natural-language-to-SQL translation pipeline:
// prompt construction, the hosted chat-completion call, and extraction of a
// single SQL statement from free-form model output.
package nlq

import "fmt"

// systemTemplate instructs the model to emit exactly one SQL statement for
// the described schema and nothing else.
const systemTemplate = `You are a SQL expert. Your task is to convert natural language queries into valid SQL queries.

Rules:
1. Generate ONLY the SQL query, nothing else
2. Do not include any explanations, comments, or markdown formatting
3. The query should be executable directly
4. If the query is ambiguous, make reasonable assumptions
5. For SELECT queries, always use appropriate WHERE clauses if filtering is mentioned
6. Always use the database schema provided to ensure table and column names are correct

Database Schema:
%s

Important: Return ONLY the SQL query without any additional text, explanations, or code blocks.`

// BuildPrompt composes the system and user messages for one translation.
// Pure and deterministic: identical inputs always yield identical output.
func BuildPrompt(schemaText, question string) (system, user string) {
	if schemaText == "" {
		schemaText = "No schema information available."
	}
	system = fmt.Sprintf(systemTemplate, schemaText)
	user = fmt.Sprintf("Convert the following natural language query to SQL:\n\n%s", question)
	return system, user
}
