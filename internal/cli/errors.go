// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all CLI commands in lanerun.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let the caller decide how to display errors
//   - Use structured error types for better error handling
//   - Provide helpers for common error scenarios
//
// ERROR HANDLING: Errors must not be silently ignored

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 3
	// ExitValidationError indicates invalid user input or config values
	ExitValidationError = 4
	// ExitIOError indicates a filesystem or database error
	ExitIOError = 5
	// ExitInterrupted indicates the operation was interrupted (Ctrl+C)
	ExitInterrupted = 6
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 7
	// ExitInternalError indicates a bug (recovered panic, invariant break)
	ExitInternalError = 8
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "bench", "history")
	Action  string // Action being performed (e.g., "run", "delete")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents an invalid invocation: missing arguments,
// unknown subcommands, malformed flags.
type UsageError struct {
	Command string // Command that was invoked
	Reason  string // What was wrong with the invocation
	Usage   string // One-line usage hint (optional)
}

func (e *UsageError) Error() string {
	msg := e.Reason
	if e.Command != "" {
		msg = fmt.Sprintf("%s: %s", e.Command, e.Reason)
	}
	if e.Usage != "" {
		msg += fmt.Sprintf("\nUsage: %s", e.Usage)
	}
	return msg
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "demo", "scenario", "run")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewUsageError creates a new usage error.
func NewUsageError(command, reason string) error {
	return &UsageError{
		Command: command,
		Reason:  reason,
	}
}

// NewUsageErrorWithHint creates a usage error with a usage line.
func NewUsageErrorWithHint(command, reason, usage string) error {
	return &UsageError{
		Command: command,
		Reason:  reason,
		Usage:   usage,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// ErrDisplayed marks an error a handler has already shown to the user.
// DisplayError skips errors wrapping it, so the top-level error path
// can map them to an exit code without printing twice.
var ErrDisplayed = errors.New("already displayed")

// Displayed wraps err so the top-level error path will not print it again.
func Displayed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDisplayed, err)
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError displays an error in a consistent format.
// This should be called by command handlers before returning an error.
//
// In JSON mode, outputs structured JSON error.
// In normal mode, displays formatted error message.
func DisplayError(err error, jsonMode bool) {
	if err == nil || errors.Is(err, ErrDisplayed) {
		return
	}

	if jsonMode {
		DisplayErrorJSON(err)
		return
	}

	fmt.Println()
	fmt.Printf("%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
	fmt.Println()
}

// DisplayErrorJSON outputs an error as JSON.
func DisplayErrorJSON(err error) {
	output := map[string]interface{}{
		"error":   err.Error(),
		"success": false,
	}

	// Add structured error details if available
	switch e := err.(type) {
	case *CommandError:
		output["error_type"] = "command_error"
		output["command"] = e.Command
		output["action"] = e.Action
		output["reason"] = e.Reason
		if e.Err != nil {
			output["underlying_error"] = e.Err.Error()
		}

	case *UsageError:
		output["error_type"] = "usage_error"
		output["command"] = e.Command
		output["reason"] = e.Reason
		if e.Usage != "" {
			output["usage"] = e.Usage
		}

	case *ValidationError:
		output["error_type"] = "validation_error"
		output["field"] = e.Field
		output["value"] = e.Value
		output["reason"] = e.Reason
		if e.Example != "" {
			output["example"] = e.Example
		}

	case *NotFoundError:
		output["error_type"] = "not_found_error"
		output["resource"] = e.Resource
		output["id"] = e.ID

	default:
		output["error_type"] = "generic_error"
	}

	output["exit_code"] = GetExitCode(err)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

// =============================================================================
// ERROR HANDLING PATTERNS
// =============================================================================

// HandleError is a convenience function that displays and returns an error.
// Use this as the final step in error handling.
//
// Example:
//
//	if err != nil {
//	    return HandleError(err, jsonMode)
//	}
func HandleError(err error, jsonMode bool) error {
	if err == nil {
		return nil
	}

	DisplayError(err, jsonMode)
	return err
}

// HandleErrorAndExit displays an error and exits with an appropriate exit code.
// Use this for fatal errors in main command handlers.
//
// Example:
//
//	if err := cli.Bootstrap(args); err != nil {
//	    cli.HandleErrorAndExit(err, args.JSON)
//	}
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}

	DisplayError(err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the appropriate exit code for an error.
// Exit codes are determined based on the error type:
//   - ExitUsageError (2): UsageError
//   - ExitNotFoundError (3): NotFoundError
//   - ExitValidationError (4): ValidationError
//   - ExitIOError (5): filesystem and database errors
//   - ExitInterrupted (6): context.Canceled, interrupt
//   - ExitTimeoutError (7): context.DeadlineExceeded, timeouts
//   - ExitInternalError (8): recovered panics
//   - ExitGeneralError (1): all other errors
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for specific error types
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitValidationError
	}

	// Context sentinel errors
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	// Check error message content for additional categorization
	errMsg := strings.ToLower(err.Error())

	// Usage errors
	if strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "unknown subcommand") ||
		strings.Contains(errMsg, "usage:") {
		return ExitUsageError
	}

	// Not found errors
	if strings.Contains(errMsg, "not found") ||
		strings.Contains(errMsg, "no such scenario") ||
		strings.Contains(errMsg, "unknown scenario") {
		return ExitNotFoundError
	}

	// Internal errors, before validation: a panic message often
	// carries phrases like "out of range"
	if strings.Contains(errMsg, "panic") ||
		strings.Contains(errMsg, "internal error") {
		return ExitInternalError
	}

	// Validation errors
	if strings.Contains(errMsg, "invalid") ||
		strings.Contains(errMsg, "must be") ||
		strings.Contains(errMsg, "out of range") {
		return ExitValidationError
	}

	// IO errors
	if strings.Contains(errMsg, "permission denied") ||
		strings.Contains(errMsg, "no such file") ||
		strings.Contains(errMsg, "read-only") ||
		strings.Contains(errMsg, "i/o") ||
		strings.Contains(errMsg, "database") ||
		strings.Contains(errMsg, "disk") {
		return ExitIOError
	}

	// Interrupt errors
	if strings.Contains(errMsg, "interrupt") ||
		strings.Contains(errMsg, "canceled") ||
		strings.Contains(errMsg, "cancelled") {
		return ExitInterrupted
	}

	// Timeout errors
	if strings.Contains(errMsg, "timed out") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ExitTimeoutError
	}

	return ExitGeneralError
}

// WrapError wraps an error with additional context.
// Use this to add context as errors bubble up the call stack.
//
// Example:
//
//	result, err := runner.Run(ctx, name)
//	if err != nil {
//	    return WrapError(err, "benchmark run")
//	}
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// =============================================================================
// COMMON ERROR CONSTRUCTORS
// =============================================================================

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(
		argName,
		"",
		"required argument missing",
		usage,
	)
}

// ErrInvalidFormat creates an error for invalid format.
func ErrInvalidFormat(field, value, expected string) error {
	return NewValidationErrorWithExample(
		field,
		value,
		"invalid format",
		expected,
	)
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return NewNotFoundError(resource, id)
}

// ErrUnsupportedFormat creates an error for unsupported export formats.
func ErrUnsupportedFormat(format string, supportedFormats []string) error {
	return NewValidationErrorWithExample(
		"format",
		format,
		"unsupported format",
		fmt.Sprintf("supported formats: %v", supportedFormats),
	)
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsUsageError checks if an error is a usage error.
func IsUsageError(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsCommandError checks if an error is a command error.
func IsCommandError(err error) bool {
	var e *CommandError
	return errors.As(err, &e)
}
