// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNetworkError = 5
	ExitNotFound     = 7
	ExitTimeout      = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
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

// ConfigError wraps a failure to load or save configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrMissingArgument reports a missing positional argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required", Example: usage}
}

// ErrUnsupportedFormat reports an unknown --format value.
func ErrUnsupportedFormat(format string, supported []string) error {
	return &ValidationError{
		Field:   "format",
		Value:   format,
		Reason:  fmt.Sprintf("must be one of %v", supported),
		Example: "--format " + supported[0],
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err for a human, or as a JSON error envelope.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		out := map[string]interface{}{
			"success":    false,
			"error":      err.Error(),
			"error_type": errorType(err),
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

func errorType(err error) string {
	var ve *ValidationError
	var ce *ConfigError
	var cfgErrs config.ValidateErrors
	var clientErr *api.ClientError
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &ce), errors.As(err, &cfgErrs):
		return "config_error"
	case errors.As(err, &clientErr):
		switch clientErr.Type {
		case api.ErrTypeNotFound:
			return "not_found_error"
		case api.ErrTypeTimeout:
			return "timeout_error"
		case api.ErrTypeConnection:
			return "network_error"
		case api.ErrTypeBackend:
			return "backend_error"
		}
	case api.IsTimeout(err):
		return "timeout_error"
	}
	return "generic_error"
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch errorType(err) {
	case "validation_error":
		return ExitUsageError
	case "config_error":
		return ExitConfigError
	case "not_found_error":
		return ExitNotFound
	case "timeout_error":
		return ExitTimeout
	case "network_error":
		return ExitNetworkError
	}
	return ExitGeneralError
}
