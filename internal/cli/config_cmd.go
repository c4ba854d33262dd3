// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command handler.
//
// Command: lanerun config
// Short: Manage lanerun configuration
//
// Subcommands:
//   (none) / show  - Show current configuration
//   get <key>      - Print one value
//   set <key> <value> - Set a value and save
//   reset          - Restore defaults (asks unless --confirm)
//   path           - Print the config file location
//   keys           - List all configuration keys
//
// Configuration Keys (dotted, snake_case):
//   output.color, output.verbose
//   sched.task_timeout_ms, sched.escalate_after_ms, sched.notify_buffer
//   bench.iterations, bench.tasks, bench.workers, bench.warmup
//   watch.debounce_ms, watch.poll_interval_ms, watch.use_polling, watch.extensions
//   history.enabled, history.path, history.max_runs
//   export.dir, export.format
//
// Examples:
//   lanerun config show
//   lanerun config get bench.workers
//   lanerun config set bench.workers 8
//   lanerun config set watch.extensions .go,.md
//   lanerun config reset --confirm
//
// Flags:
//   --confirm  - Skip the reset confirmation prompt

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/lanerun/internal/config"
)

// Config command styles.
var (
	configSectionStyle = SectionStyle
	configKeyStyle     = LabelStyle
	configValueStyle   = ValueStyle
)

// HandleConfig handles the config command.
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return handleConfigShow(args)
	case "get":
		return handleConfigGet(parser, args)
	case "set":
		return handleConfigSet(parser, args)
	case "reset":
		return handleConfigReset(parser, args)
	case "path":
		return handleConfigPath(args)
	case "keys":
		return handleConfigKeys(args)
	default:
		return NewUsageError("config",
			fmt.Sprintf("unknown subcommand: %s (use show, get, set, reset, path, keys)",
				parser.Subcommand()))
	}
}

// handleConfigShow shows the full configuration grouped by section.
func handleConfigShow(args Args) error {
	cfg := config.Global()

	if args.JSON {
		values := make(map[string]interface{})
		for _, key := range config.GetAllKeys() {
			if v, err := cfg.Get(key); err == nil {
				values[key] = v
			}
		}
		return NewJSONResponse("config", values).Print()
	}

	fmt.Println(TitleStyle.Render("lanerun configuration"))

	lastSection := ""
	for _, key := range config.GetAllKeys() {
		section, short := splitConfigKey(key)
		if section != lastSection {
			fmt.Println(configSectionStyle.Render("[" + section + "]"))
			lastSection = section
		}
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("  %s %s\n",
			configKeyStyle.Render(short+":"),
			configValueStyle.Render(formatConfigValue(value)))
	}

	fmt.Println()
	fmt.Println(RenderSeparator(41))
	if path, err := config.ConfigPathTOML(); err == nil {
		fmt.Printf("Config file: %s\n", path)
	}
	return nil
}

// handleConfigGet prints a single value.
func handleConfigGet(parser *ArgParser, args Args) error {
	key := parser.Positional(0)
	if key == "" {
		return ErrMissingArgument("key", "lanerun config get <key>")
	}

	value, err := config.Global().Get(key)
	if err != nil {
		return NewNotFoundError("config key", key)
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{
			"key":   key,
			"value": value,
		}).Print()
	}

	fmt.Println(formatConfigValue(value))
	return nil
}

// handleConfigSet sets a value, validates, and saves.
func handleConfigSet(parser *ArgParser, args Args) error {
	key := parser.Positional(0)
	value := parser.Positional(1)
	if key == "" || value == "" {
		return ErrMissingArgument("key and value", "lanerun config set <key> <value>")
	}

	cfg := config.Global().Clone()
	if err := cfg.Set(key, value); err != nil {
		return NewValidationError(key, value, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return NewValidationError(key, value, err.Error())
	}
	if err := config.Save(cfg); err != nil {
		return NewCommandError("config", "save", key, err)
	}
	config.SetGlobal(cfg)

	if args.JSON {
		newValue, _ := cfg.Get(key)
		return NewJSONResponse("config", map[string]interface{}{
			"key":   key,
			"value": newValue,
		}).Print()
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

// handleConfigReset restores defaults.
func handleConfigReset(parser *ArgParser, args Args) error {
	if !parser.BoolFlag("confirm") && !parser.BoolFlag("y") {
		ok, err := confirmAction("Reset all configuration to defaults?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.Default()
	if err := config.Save(cfg); err != nil {
		return NewCommandError("config", "reset", "could not save defaults", err)
	}
	config.SetGlobal(cfg)

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{
			"reset": true,
		}).Print()
	}

	fmt.Printf("%s configuration reset to defaults\n", SuccessStyle.Render("[OK]"))
	return nil
}

// handleConfigPath prints the config file location.
func handleConfigPath(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "path", "could not resolve config directory", err)
	}

	exists := false
	if _, err := os.Stat(path); err == nil {
		exists = true
	}

	if args.JSON {
		return NewJSONResponse("config", ConfigPathData{
			Path:   path,
			Exists: exists,
		}).Print()
	}

	fmt.Println(path)
	if !exists {
		fmt.Println(DimStyle.Render("(not created yet; run 'lanerun config set' to create it)"))
	}
	return nil
}

// handleConfigKeys lists all configuration keys.
func handleConfigKeys(args Args) error {
	keys := config.GetAllKeys()

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{
			"keys": keys,
		}).Print()
	}

	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

// splitConfigKey splits "bench.workers" into section and short key.
// Top-level keys land in the "general" section.
func splitConfigKey(key string) (section, short string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "general", key
}

// formatConfigValue renders a config value for display.
func formatConfigValue(value interface{}) string {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return "(none)"
		}
		return strings.Join(v, ", ")
	case string:
		if v == "" {
			return "(empty)"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
