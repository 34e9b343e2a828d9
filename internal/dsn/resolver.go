// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// ParseDriver maps a --driver flag value to a Driver.
func ParseDriver(name string) Driver {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return DriverMySQL
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	}
	return DriverUnknown
}

// Build validates the connection fields and returns a connection string for
// the requested driver. This is the main entry point for DSN construction.
func Build(info Info) (string, error) {
	if strings.TrimSpace(info.Host) == "" {
		return "", NewBuildError("missing host", "provide a host with --host")
	}
	if strings.TrimSpace(info.User) == "" {
		return "", NewBuildError("missing username", "provide a user with --user")
	}
	if strings.TrimSpace(info.Database) == "" {
		return "", NewBuildError("missing database name", "provide a database with --database")
	}

	switch info.Driver {
	case DriverMySQL:
		return buildMySQL(info)
	case DriverPostgres:
		return buildPostgres(info)
	default:
		return "", NewBuildError("unknown database driver", "use --driver mysql or --driver postgres")
	}
}
