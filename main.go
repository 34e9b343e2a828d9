// Package main is the entry point for the chatdb CLI application.
// It provides interactive SQL and natural-language querying of relational
// databases through a hosted language model.
package main

import (
	"chatdb/cli/cmd"
)

func main() {
	cmd.Execute()
}
