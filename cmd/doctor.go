// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatdb/cli/internal/config"
	"chatdb/cli/internal/keychain"
	"chatdb/cli/internal/logging"
	"chatdb/cli/internal/terminal"
)

var (
	saveKey  bool
	clearKey bool
)

// doctorCmd prints setup diagnostics for natural-language mode: where the
// API key was (or wasn't) found, the config file status, and keychain
// availability. With --save-key it prompts for a key and stores it in the
// OS keychain.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose natural-language mode configuration",
	Long: `The doctor command checks everything natural-language mode depends on:
the GROQ_API_KEY environment variable, the chatdb.env config file, and the
OS keychain. It reports where the API key was found without ever printing
the full key.

Use --save-key to store a key in the OS keychain, or --clear-key to remove
a previously stored one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(flagVerbose)

		if saveKey {
			return saveKeyToKeychain()
		}
		if clearKey {
			return clearKeyFromKeychain()
		}

		cfg := config.Load()

		rows := pterm.TableData{{"Check", "Status"}}

		if envKey := os.Getenv("GROQ_API_KEY"); envKey != "" {
			rows = append(rows, []string{"GROQ_API_KEY environment variable", "✓ set"})
		} else {
			rows = append(rows, []string{"GROQ_API_KEY environment variable", "✗ not set"})
		}

		if p, err := config.EnvFile(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				rows = append(rows, []string{"Config file (" + p + ")", "✓ exists"})
			} else {
				rows = append(rows, []string{"Config file (" + p + ")", "✗ not found"})
			}
		}

		if m, err := keychain.GetManager(); err != nil {
			rows = append(rows, []string{"OS keychain", "✗ unavailable"})
		} else if _, err := m.LoadAPIKey(); err == nil {
			rows = append(rows, []string{"OS keychain", "✓ holds an API key"})
		} else {
			rows = append(rows, []string{"OS keychain", "✓ available, no key stored"})
		}

		if cfg.APIKey != "" {
			rows = append(rows, []string{"API key resolved", "✓ from " + cfg.APIKeySource})
			rows = append(rows, []string{"API key preview", logging.Preview(cfg.APIKey)})
			rows = append(rows, []string{"Natural Language mode", "✓ available"})
		} else {
			rows = append(rows, []string{"API key resolved", "✗ no key found"})
			rows = append(rows, []string{"Natural Language mode", "✗ unavailable"})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}

		if cfg.APIKey == "" {
			pterm.Println()
			pterm.Println("To enable Natural Language mode, do one of:")
			pterm.Println("  1. export GROQ_API_KEY='your-api-key'")
			if p, err := config.EnvFile(); err == nil {
				pterm.Println("  2. echo 'GROQ_API_KEY=your-api-key' > " + p)
			}
			pterm.Println("  3. chatdb doctor --save-key   (store it in the OS keychain)")
		}
		return nil
	},
}

func saveKeyToKeychain() error {
	m, err := keychain.GetManager()
	if err != nil {
		pterm.Println("✗ Secure storage is not available on this system.")
		return err
	}
	key, err := terminal.ReadPassword("Enter API key: ")
	if err != nil {
		return fmt.Errorf("read API key: %w", err)
	}
	terminal.ClearPreviousLines(len("Enter API key: "))
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}
	if err := m.SaveAPIKey(key); err != nil {
		pterm.Println("✗ Failed to save the API key securely.")
		return err
	}
	pterm.Println("✓ API key saved to the OS keychain.")
	return nil
}

func clearKeyFromKeychain() error {
	m, err := keychain.GetManager()
	if err != nil {
		pterm.Println("✗ Secure storage is not available on this system.")
		return err
	}
	if err := m.ClearAPIKey(); err != nil {
		pterm.Println("✗ Failed to remove the API key from the keychain.")
		return err
	}
	pterm.Println("✓ API key removed from the OS keychain.")
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&saveKey, "save-key", false, "Prompt for an API key and store it in the OS keychain")
	doctorCmd.Flags().BoolVar(&clearKey, "clear-key", false, "Remove the stored API key from the OS keychain")
}
