// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the lanerun command-line interface.
//
// The package follows a standardized handler pattern:
//
//   - main.go calls Parse() to get a Command and Args
//   - global flags (--json, --verbose, --quiet, --no-color, --config)
//     are extracted before dispatch
//   - each command has a Handle* function in its own <name>_cmd.go file
//   - handlers parse their remaining arguments with ArgParser
//   - errors are returned (never swallowed) and mapped to exit codes
//     by GetExitCode
//
// All commands support --json for machine-readable output using the
// JSONResponse envelope. Human output uses the shared lipgloss styles
// in styles.go, which degrade to plain text when colors are disabled.
package cli
