// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for chatdb.
// It wires credential collection, the database connection, schema
// introspection, and the translation client into one interactive session
// using the Cobra CLI framework.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatdb/cli/internal/config"
	"chatdb/cli/internal/db"
	"chatdb/cli/internal/dsn"
	apperrors "chatdb/cli/internal/errors"
	"chatdb/cli/internal/logging"
	"chatdb/cli/internal/nlq"
	"chatdb/cli/internal/repl"
	"chatdb/cli/internal/schema"
	"chatdb/cli/internal/terminal"
)

var (
	flagHost        string
	flagUser        string
	flagDatabase    string
	flagDriver      string
	flagSSLDisabled bool
	flagVerbose     bool
	showVersion     bool
)

// rootCmd starts the interactive session: one long-lived REPL per invocation.
var rootCmd = &cobra.Command{
	Use:           "chatdb",
	Short:         "Interactive SQL and natural-language database client",
	Long: `chatdb is an interactive client for relational databases. Queries can be
typed as raw SQL or as natural-language questions, which are translated to
SQL by a hosted language model before execution.

The password is always prompted interactively and never accepted as a flag.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("chatdb %s\n", Version)
			return nil
		}
		logging.Setup(flagVerbose)
		return runSession(cmd.Context())
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&flagHost, "host", "H", "localhost", "Database server host")
	rootCmd.Flags().StringVarP(&flagUser, "user", "u", "root", "Database username")
	rootCmd.Flags().StringVarP(&flagDatabase, "database", "d", "", "Database name")
	rootCmd.Flags().StringVar(&flagDriver, "driver", "mysql", "Database driver (mysql or postgres)")
	rootCmd.Flags().BoolVar(&flagSSLDisabled, "ssl-disabled", false, "Disable SSL/TLS for the database connection")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}

// runSession collects credentials, connects, prepares natural-language mode
// when possible, and hands control to the REPL.
func runSession(ctx context.Context) error {
	stdin := bufio.NewReader(os.Stdin)

	info, err := collectCredentials(stdin)
	if err != nil {
		return err
	}

	adapter, err := connectWithRetry(ctx, stdin, info)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := adapter.Close(); cerr == nil {
			fmt.Println("\n✓ Database connection closed.")
		}
	}()

	cfg := config.Load()
	var translator repl.Translator
	if cfg.APIKey != "" {
		translator = nlq.New(nlq.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		pterm.Println("✓ Natural Language mode available (API key from " + cfg.APIKeySource + ")")
	} else {
		pterm.Println("⚠ Natural Language mode not available: GROQ_API_KEY not found.")
		pterm.Println("  Run 'chatdb doctor' for setup diagnostics.")
	}

	var desc *schema.Description
	if translator != nil {
		desc, err = schema.Describe(ctx, adapter, info.Database)
		if err != nil {
			pterm.Println("⚠ " + logging.PresentError("Could not load database schema", err))
			pterm.Println("  Natural Language mode will be unavailable.")
			desc = nil
		} else {
			pterm.Println("✓ Database schema loaded for query generation")
		}
	}

	mode := chooseMode(stdin, translator != nil && desc != nil)

	session := repl.New(repl.Options{
		Adapter:    adapter,
		Schema:     desc,
		Translator: translator,
		Mode:       mode,
		Input:      stdin,
		Spinner:    sessionSpinner,
	})
	return session.Run(ctx)
}

// collectCredentials resolves connection fields from flags, prompting for
// anything missing. The password is always prompted.
func collectCredentials(stdin *bufio.Reader) (dsn.Info, error) {
	info := dsn.Info{
		Driver:      dsn.ParseDriver(flagDriver),
		Host:        flagHost,
		User:        flagUser,
		Database:    flagDatabase,
		SSLDisabled: flagSSLDisabled,
	}
	if info.Driver == dsn.DriverUnknown {
		return info, apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("unknown driver %q: use mysql or postgres", flagDriver))
	}

	if info.Database == "" {
		fmt.Println("Please enter your database credentials:")
		info.Host = promptDefault(stdin, "Host", flagHost)
		info.User = promptDefault(stdin, "User", flagUser)
		info.Database = promptDefault(stdin, "Database", "")
		if info.Database == "" {
			return info, apperrors.New(apperrors.ConfigInvalid, "database name is required")
		}
	}

	password, err := terminal.ReadPassword("Password: ")
	if err != nil {
		return info, fmt.Errorf("read password: %w", err)
	}
	// Scrub the prompt so it doesn't linger above the session output.
	terminal.ClearPreviousLines(len("Password: "))
	info.Password = password
	return info, nil
}

// connectWithRetry attempts the initial connection and, on failure, gives
// the user one chance to re-enter credentials before giving up.
func connectWithRetry(ctx context.Context, stdin *bufio.Reader, info dsn.Info) (db.Adapter, error) {
	for attempt := 0; ; attempt++ {
		adapter, err := connectOnce(ctx, info)
		if err == nil {
			pterm.Println("✓ Successfully connected to the database!")
			return adapter, nil
		}

		pterm.Println("✗ " + logging.PresentError("Error connecting to the database", err))
		if attempt >= 1 {
			return nil, apperrors.Wrap(apperrors.ConnectionFailed, "failed to connect to database", err)
		}

		fmt.Print("Re-enter credentials and retry? [y/N]: ")
		answer, _ := stdin.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			return nil, apperrors.Wrap(apperrors.ConnectionFailed, "failed to connect to database", err)
		}

		info.Host = promptDefault(stdin, "Host", info.Host)
		info.User = promptDefault(stdin, "User", info.User)
		info.Database = promptDefault(stdin, "Database", info.Database)
		password, perr := terminal.ReadPassword("Password: ")
		if perr != nil {
			return nil, fmt.Errorf("read password: %w", perr)
		}
		terminal.ClearPreviousLines(len("Password: "))
		info.Password = password
	}
}

func connectOnce(ctx context.Context, info dsn.Info) (db.Adapter, error) {
	connString, err := dsn.Build(info)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Connecting to %s database '%s' at %s...\n", info.Driver, info.Database, info.Host)
	stop := sessionSpinner("verifying connection")

	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	adapter, err := db.Connect(ctxPing, info.Driver, connString)
	if err != nil {
		stop()
		return nil, err
	}
	if err := adapter.Ping(ctxPing); err != nil {
		stop()
		adapter.Close()
		return nil, err
	}
	stop()
	return adapter, nil
}

// chooseMode shows the startup menu. Natural-language mode can only be
// picked when it is actually available.
func chooseMode(stdin *bufio.Reader, nlAvailable bool) repl.Mode {
	rule := strings.Repeat("=", 60)
	fmt.Println("\n" + rule)
	fmt.Println("chatdb - Query Mode Selection")
	fmt.Println(rule)
	fmt.Println("Select query mode:")
	fmt.Println("  1. Direct SQL Queries (enter SQL directly)")
	if nlAvailable {
		fmt.Println("  2. Natural Language Queries (converted to SQL via LLM)")
	} else {
		fmt.Println("  2. Natural Language Queries (⚠ Not available)")
	}
	fmt.Println(rule)

	for {
		fmt.Print("\nEnter your choice (1 or 2): ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return repl.ModeSQL
		}
		switch strings.TrimSpace(line) {
		case "1":
			return repl.ModeSQL
		case "2":
			if nlAvailable {
				return repl.ModeNaturalLanguage
			}
			fmt.Println("✗ Natural Language mode is not available. Run 'chatdb doctor' for details.")
		default:
			fmt.Println("✗ Invalid choice. Please enter 1 or 2.")
		}
	}
}

func promptDefault(stdin *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := stdin.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
