// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the lanerun tool.
//
// This package contains common helper functions used throughout the tool
// for string display, number formatting, and file operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation for terminal output
//   - PadRight: display-width aware padding for aligned columns
//   - SanitizeFilename: strips characters unsafe in file names
//
// Number Formatting:
//   - FormatCount: integer formatting with comma separators
//   - FloatToStringPrec: float formatting with fixed precision
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	display := util.TruncateWidth(longText, 50)
//
//	// Format large counts for report output
//	s := util.FormatCount(250000)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
