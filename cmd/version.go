// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

// Version is the CLI version, overridden at build time via
// -ldflags "-X chatdb/cli/cmd.Version=...".
var Version = "dev"
