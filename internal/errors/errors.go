// Package errors provides structured error types and exit codes for dejadiff.
//
// Three error categories matter to a run:
//   - configuration errors are fatal before any harness runs;
//   - harness launch errors (see driver.LaunchError) abort the whole run;
//   - archive errors are never fatal, the run continues without a previous run.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (harness could not run, publishing failed)
	ExitConfigError      = 2 // Configuration error (invalid config, missing command)
	ExitEnvironmentError = 3 // Environment error (sink or collector could not be set up)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindLaunch
	KindArchive
	KindNotFound
	KindEnvironment
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindLaunch:
		return "launch"
	case KindArchive:
		return "archive"
	case KindNotFound:
		return "not-found"
	case KindEnvironment:
		return "environment"
	default:
		return "runtime"
	}
}

// Error is the base error type for dejadiff.
type Error struct {
	Kind      ErrorKind
	Message   string
	Component string // Sink, collector or driver name if applicable
	Cause     error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Component != "" {
		msg = fmt.Sprintf("[%s] %s", e.Component, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error for a component.
func Environment(component string, cause error) *Error {
	return &Error{
		Kind:      KindEnvironment,
		Message:   "setup failed",
		Component: component,
		Cause:     cause,
	}
}

// ArchiveUnavailable reports that the previous run could not be loaded.
// It is never fatal.
func ArchiveUnavailable(component string, cause error) *Error {
	return &Error{
		Kind:      KindArchive,
		Message:   "previous results unavailable",
		Component: component,
		Cause:     cause,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error. Unknown registry keys are reported as
// configuration errors by the caller.
func NotFound(what, name string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// IsKind reports whether err is or wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// exitCoder is implemented by error types that carry their own exit code.
type exitCoder interface {
	ExitCode() int
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitRuntimeError
}
