package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
)

// Exit codes for adminspec CLI
const (
	// ExitSuccess indicates all checks passed
	ExitSuccess = 0

	// ExitCheckFailure indicates one or more checks failed
	ExitCheckFailure = 1

	// ExitParseError indicates a check file parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a page could not be loaded
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for an error returned by a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitErr(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

func usageErr(format string, args ...any) error {
	return exitErr(ExitUsageError, fmt.Errorf(format, args...))
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}

	var parseErr *parser.ParseError
	var validationErr *parser.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return ExitParseError
	}
	return ExitCheckFailure
}
