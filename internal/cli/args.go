// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Standardized argument parsing for CLI commands.
//
// STANDARDIZED PATTERN:
//   - Commands receive raw args and parse them internally
//   - Use ArgParser for consistent flag/positional handling
//   - Support --flag=value, --flag value, and -f value forms
//
// Example:
//
//	parser := NewArgParser(args.Raw)
//	scenario := parser.FlagOrDefault("scenario", "")
//	limit, err := parser.FlagIntOrDefault("limit", 20)

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgParser provides standardized argument parsing for CLI commands.
type ArgParser struct {
	// subcommand is the first positional argument (e.g., "list" in "lanerun history list")
	subcommand string
	// flags maps flag names to values (--flag=value or --flag value)
	flags map[string]string
	// boolFlags contains flags that were present without values
	boolFlags map[string]bool
	// positional contains non-flag arguments after the subcommand
	positional []string
	// raw contains the original unparsed arguments
	raw []string
}

// NewArgParser creates a parser from raw command arguments.
// The first non-flag argument is treated as the subcommand.
func NewArgParser(args []string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: []string{},
		raw:        args,
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case strings.HasPrefix(arg, "--"):
			// Handle --flag=value or --flag value
			flagName := strings.TrimPrefix(arg, "--")
			if strings.Contains(flagName, "=") {
				parts := strings.SplitN(flagName, "=", 2)
				if parts[1] == "true" {
					parser.boolFlags[parts[0]] = true
				} else if parts[1] == "false" {
					parser.boolFlags[parts[0]] = false
				} else {
					parser.flags[parts[0]] = parts[1]
				}
			} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				// --flag value form
				parser.flags[flagName] = args[i+1]
				i++
			} else {
				// Boolean flag
				parser.boolFlags[flagName] = true
			}

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			// Handle short flags like -n value
			flagName := strings.TrimPrefix(arg, "-")
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				parser.flags[flagName] = args[i+1]
				i++
			} else {
				parser.boolFlags[flagName] = true
			}

		default:
			// Positional argument
			if parser.subcommand == "" && len(parser.positional) == 0 {
				parser.subcommand = arg
			} else {
				parser.positional = append(parser.positional, arg)
			}
		}
		i++
	}

	return parser
}

// Subcommand returns the subcommand (first positional arg).
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a flag, or empty string if not present.
func (p *ArgParser) Flag(name string) string {
	// Check exact match first
	if val, ok := p.flags[name]; ok {
		return val
	}
	// Check without dashes
	cleanName := strings.TrimLeft(name, "-")
	if val, ok := p.flags[cleanName]; ok {
		return val
	}
	return ""
}

// FlagOrDefault returns the flag value or a default.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns a flag value as an integer.
func (p *ArgParser) FlagInt(name string) (int, error) {
	val := p.Flag(name)
	if val == "" {
		return 0, fmt.Errorf("flag %s not found", name)
	}
	return strconv.Atoi(val)
}

// FlagIntOrDefault returns a flag value as an integer or a default.
func (p *ArgParser) FlagIntOrDefault(name string, defaultValue int) int {
	if val, err := p.FlagInt(name); err == nil {
		return val
	}
	return defaultValue
}

// BoolFlag returns true if a boolean flag is set.
func (p *ArgParser) BoolFlag(name string) bool {
	// Check exact match
	if val, ok := p.boolFlags[name]; ok {
		return val
	}
	// Check without dashes
	cleanName := strings.TrimLeft(name, "-")
	if val, ok := p.boolFlags[cleanName]; ok {
		return val
	}
	return false
}

// Positional returns the positional argument at index, or empty string.
func (p *ArgParser) Positional(index int) string {
	if index < len(p.positional) {
		return p.positional[index]
	}
	return ""
}

// PositionalFrom returns all positional args from index onward.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < len(p.positional) {
		return p.positional[index:]
	}
	return []string{}
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag checks if a flag is present (either as value or bool flag).
func (p *ArgParser) HasFlag(name string) bool {
	cleanName := strings.TrimLeft(name, "-")
	if _, ok := p.flags[cleanName]; ok {
		return true
	}
	if _, ok := p.boolFlags[cleanName]; ok {
		return true
	}
	return false
}

// Raw returns the original unparsed arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// VALIDATION HELPERS
// =============================================================================

// ParseIntWithValidation parses an integer with range validation.
func ParseIntWithValidation(value, fieldName string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", fieldName, err)
	}
	if num <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", fieldName, num)
	}
	return num, nil
}

// ParseBoolString parses common boolean string representations.
func ParseBoolString(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s (use true/false, yes/no, 1/0)", value)
	}
}

// JoinPositionalArgs joins positional arguments into a single string.
// Useful for commands that take free-form text.
func JoinPositionalArgs(args []string) string {
	return strings.Join(args, " ")
}
