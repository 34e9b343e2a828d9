// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads CLI configuration for chatdb. The inference API key
// is resolved from the environment first, then from a .env-style file in the
// XDG config dir, then from the OS keychain. A missing key is not an error;
// it only disables natural-language mode.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"chatdb/cli/internal/keychain"
	"chatdb/cli/internal/xdg"
)

// Key source labels, reported by diagnostics.
const (
	SourceEnv      = "environment variable"
	SourceFile     = "config file"
	SourceKeychain = "OS keychain"
	SourceNone     = ""
)

// Config holds non-connection CLI settings.
type Config struct {
	// APIKey is the inference API key; empty when not configured.
	APIKey string
	// APIKeySource records where the key was found, for diagnostics.
	APIKeySource string
	// Model is the completion model used for translation.
	Model string
	// Timeout bounds one translation round-trip.
	Timeout time.Duration
}

// EnvFile returns the path of the .env-style config file.
func EnvFile() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatdb.env"), nil
}

// Load resolves configuration. It never fails hard: when the key lookup or
// the config file is unavailable the returned Config simply has no APIKey.
func Load() Config {
	v := viper.New()
	v.SetDefault("model", "")
	v.SetDefault("timeout", "")

	if p, err := EnvFile(); err == nil {
		v.SetConfigFile(p)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // missing file is fine
	}

	c := Config{}
	c.APIKey, c.APIKeySource = resolveAPIKey(v)
	c.Model = firstNonEmpty(os.Getenv("CHATDB_MODEL"), v.GetString("model"))

	if raw := firstNonEmpty(os.Getenv("CHATDB_TIMEOUT"), v.GetString("timeout")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			c.Timeout = d
		}
	}
	return c
}

// resolveAPIKey checks the environment, then the config file, then the
// keychain.
func resolveAPIKey(v *viper.Viper) (key, source string) {
	if k := sanitizeKey(os.Getenv("GROQ_API_KEY")); k != "" {
		return k, SourceEnv
	}
	if k := sanitizeKey(v.GetString("GROQ_API_KEY")); k != "" {
		return k, SourceFile
	}
	if m, err := keychain.GetManager(); err == nil {
		if k, err := m.LoadAPIKey(); err == nil {
			if k = sanitizeKey(k); k != "" {
				return k, SourceKeychain
			}
		}
	}
	return "", SourceNone
}

// sanitizeKey strips whitespace and surrounding quotes from a key value.
func sanitizeKey(k string) string {
	k = strings.TrimSpace(k)
	k = strings.Trim(k, `"'`)
	return strings.TrimSpace(k)
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
