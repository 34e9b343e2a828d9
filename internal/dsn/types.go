// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn builds and validates driver-specific connection strings from
// the credential fields collected by the CLI. Passwords are always taken as
// raw values and escaped per driver, so special characters never require
// manual URL-encoding by the user.
package dsn

import "fmt"

// Driver identifies the database driver a DSN targets.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverUnknown  Driver = "unknown"
)

// Info contains the connection fields a DSN is built from.
type Info struct {
	Driver      Driver
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLDisabled bool
}

// BuildError represents an error that occurred while building a DSN.
type BuildError struct {
	Reason string
	Hint   string
}

func (e *BuildError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid connection settings: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid connection settings: %s", e.Reason)
}

// NewBuildError creates a new BuildError.
func NewBuildError(reason, hint string) *BuildError {
	return &BuildError{Reason: reason, Hint: hint}
}
