package cli

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes returned by the t3dport command.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitIncomplete  = 2
	ExitInterrupted = 130
)

// ConfigError represents an invalid flag or configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IncompleteError reports an import that finished with unresolved
// references while running in strict mode.
type IncompleteError struct {
	Unresolved int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("import incomplete: %d unresolved references", e.Unresolved)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var incomplete *IncompleteError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &incomplete):
		return ExitIncomplete
	default:
		return ExitFailure
	}
}
