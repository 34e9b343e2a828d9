// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package repl implements the interactive loop: it reads lines, recognizes
// control commands, and dispatches everything else to the SQL or the
// natural-language path depending on the active mode.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"chatdb/cli/internal/db"
	"chatdb/cli/internal/logging"
	"chatdb/cli/internal/nlq"
	"chatdb/cli/internal/render"
	"chatdb/cli/internal/schema"
	"chatdb/cli/internal/terminal"
)

// Mode is the active query mode of the session.
type Mode int

const (
	// ModeSQL dispatches input lines directly to the database.
	ModeSQL Mode = iota
	// ModeNaturalLanguage translates input lines to SQL first.
	ModeNaturalLanguage
)

func (m Mode) String() string {
	if m == ModeNaturalLanguage {
		return "Natural Language"
	}
	return "SQL"
}

// Translator is the natural-language translation dependency of the session.
type Translator interface {
	Translate(ctx context.Context, schemaText, question string) (string, error)
	Available() bool
}

// Options configures a Session.
type Options struct {
	Adapter    db.Adapter
	Schema     *schema.Description // nil when introspection failed
	Translator Translator          // nil when no API key is configured
	Mode       Mode
	Input      io.Reader // defaults to os.Stdin
	Output     io.Writer // defaults to os.Stdout
	// Spinner starts a progress indicator and returns its stop function.
	// nil disables the indicator (tests, non-terminals).
	Spinner func(text string) func()
}

// Session is the explicit context object owning the connection, the cached
// schema description, and the active mode. No ambient globals.
type Session struct {
	adapter    db.Adapter
	schema     *schema.Description
	translator Translator
	mode       Mode
	in         *bufio.Reader
	out        io.Writer
	spinner    func(text string) func()
}

// New creates a session. The adapter must be connected.
func New(opts Options) *Session {
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	spin := opts.Spinner
	if spin == nil {
		spin = func(string) func() { return func() {} }
	}
	return &Session{
		adapter:    opts.Adapter,
		schema:     opts.Schema,
		translator: opts.Translator,
		mode:       opts.Mode,
		in:         bufio.NewReader(in),
		out:        out,
		spinner:    spin,
	}
}

// Mode returns the active mode.
func (s *Session) Mode() Mode { return s.mode }

// NLAvailable reports whether the natural-language path can be used.
func (s *Session) NLAvailable() bool {
	return s.translator != nil && s.translator.Available() && s.schema != nil
}

// Run executes the interactive loop until quit or EOF. SIGINT is caught and
// converted into a prompt to quit explicitly; the connection stays open so
// the caller can still close it gracefully.
func (s *Session) Run(ctx context.Context) error {
	if s.mode == ModeNaturalLanguage && !s.NLAvailable() {
		fmt.Fprintln(s.out, "Natural Language mode is not available. Using SQL mode.")
		s.mode = ModeSQL
	}
	s.printBanner()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)

	lines := make(chan string)
	readErrs := make(chan error, 1)
	go func() {
		for {
			line, err := s.in.ReadString('\n')
			if len(line) > 0 {
				lines <- strings.TrimSpace(line)
			}
			if err != nil {
				readErrs <- err
				return
			}
		}
	}()

	for {
		fmt.Fprint(s.out, s.prompt())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigc:
			fmt.Fprintln(s.out, "\nInterrupted. Type 'quit' to exit.")
		case err := <-readErrs:
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "\nExiting...")
				return nil
			}
			return err
		case line := <-lines:
			if line == "" {
				continue
			}
			if quit := s.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

// handleLine processes one input line; it reports true when the session
// should end.
func (s *Session) handleLine(ctx context.Context, line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	case "help":
		s.printHelp()
		return false
	case "switch":
		s.handleSwitch()
		return false
	case "clear", "cls":
		terminal.ClearScreen()
		return false
	case "commit":
		if s.mode == ModeSQL {
			s.handleCommit(ctx)
			return false
		}
	case "rollback":
		if s.mode == ModeSQL {
			s.handleRollback(ctx)
			return false
		}
	}

	if s.mode == ModeNaturalLanguage {
		s.dispatchNaturalLanguage(ctx, line)
	} else {
		s.dispatchSQL(ctx, line)
	}
	return false
}

// handleSwitch toggles the mode. Entering natural-language mode requires
// the translator and schema to both be available; otherwise the mode is
// unchanged and the reason is reported.
func (s *Session) handleSwitch() {
	if s.mode == ModeNaturalLanguage {
		s.mode = ModeSQL
		fmt.Fprintln(s.out, "Switched to SQL mode.")
		return
	}
	if !s.NLAvailable() {
		fmt.Fprintln(s.out, "✗ Natural Language mode is not available.")
		if s.translator == nil || !s.translator.Available() {
			fmt.Fprintln(s.out, "  Set GROQ_API_KEY (environment, config file, or keychain) and restart.")
		}
		if s.schema == nil {
			fmt.Fprintln(s.out, "  Database schema could not be loaded.")
		}
		fmt.Fprintln(s.out, "  Continuing in SQL mode.")
		return
	}
	s.mode = ModeNaturalLanguage
	fmt.Fprintln(s.out, "Switched to Natural Language mode.")
}

// dispatchSQL runs a statement typed directly by the user.
func (s *Session) dispatchSQL(ctx context.Context, sql string) {
	res, err := s.adapter.Execute(ctx, sql)
	if err != nil {
		s.printQueryError(err)
		return
	}
	fmt.Fprintln(s.out, render.Table(res))
	fmt.Fprintln(s.out)
}

// dispatchNaturalLanguage translates the question, echoes the generated SQL
// for auditing, and only then executes it.
func (s *Session) dispatchNaturalLanguage(ctx context.Context, question string) {
	stop := s.spinner("Converting to SQL...")
	sql, err := s.translator.Translate(ctx, s.schema.Text(), question)
	stop()
	if err != nil {
		fmt.Fprintf(s.out, "✗ %s\n\n", nlq.UserMessage(err))
		return
	}

	fmt.Fprintf(s.out, "Generated SQL: %s\n\n", sql)

	res, execErr := s.adapter.Execute(ctx, sql)
	if execErr != nil {
		s.printQueryError(execErr)
		return
	}
	fmt.Fprintln(s.out, render.Table(res))
	fmt.Fprintln(s.out)
}

func (s *Session) handleCommit(ctx context.Context) {
	if err := s.adapter.Commit(ctx); err != nil {
		s.printQueryError(err)
		return
	}
	fmt.Fprintln(s.out, "✓ Committed.")
}

func (s *Session) handleRollback(ctx context.Context) {
	if err := s.adapter.Rollback(ctx); err != nil {
		s.printQueryError(err)
		return
	}
	fmt.Fprintln(s.out, "✓ Rolled back.")
}

func (s *Session) printQueryError(err error) {
	var qe *db.QueryError
	if errors.As(err, &qe) {
		fmt.Fprintf(s.out, "✗ Error: %s\n\n", logging.Mask(qe.Error()))
		return
	}
	fmt.Fprintf(s.out, "✗ Error: %s\n\n", logging.Mask(err.Error()))
}

func (s *Session) prompt() string {
	if s.mode == ModeNaturalLanguage {
		return "Query> "
	}
	return "SQL> "
}

func (s *Session) printBanner() {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintf(s.out, "chatdb - %s Query Mode\n", s.mode)
	fmt.Fprintln(s.out, rule)
	if s.mode == ModeNaturalLanguage {
		fmt.Fprintln(s.out, "Enter your queries in natural language. They will be converted to SQL automatically.")
	} else {
		fmt.Fprintln(s.out, "Enter your SQL queries directly.")
	}
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'quit' to exit, 'switch' to change mode.")
	fmt.Fprintln(s.out)
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "\nAvailable commands:")
	fmt.Fprintln(s.out, "  help          - Show this help message")
	fmt.Fprintln(s.out, "  quit/exit/q   - Exit the application")
	fmt.Fprintln(s.out, "  switch        - Switch between SQL and Natural Language mode")
	fmt.Fprintln(s.out, "  clear/cls     - Clear the screen")
	if s.mode == ModeSQL {
		fmt.Fprintln(s.out, "  commit        - Commit the current transaction")
		fmt.Fprintln(s.out, "  rollback      - Roll back the current transaction")
		fmt.Fprintln(s.out, "  Any SQL query - Execute the SQL query")
	} else {
		fmt.Fprintln(s.out, "  Natural language query - Convert to SQL and execute")
		fmt.Fprintln(s.out, "\nExample queries:")
		fmt.Fprintln(s.out, "  'Show me all startups'")
		fmt.Fprintln(s.out, "  'Count the number of startups in each industry'")
	}
	fmt.Fprintln(s.out)
}
