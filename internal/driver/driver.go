package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
)

// Driver runs one harness invocation and returns its combined output.
type Driver interface {
	// Run executes spec and returns the captured transcript. A non-zero exit
	// status is not an error; failing to start or wait on the process is,
	// and is reported as *LaunchError.
	Run(ctx context.Context, spec TestSpec) (string, error)
	// Name returns the registry key of the driver.
	Name() string
}

// LaunchError reports that a harness process could not be started, could
// not be waited on, or was stopped by its timeout. It aborts the run.
type LaunchError struct {
	Spec   TestSpec
	Output string // Output captured before the failure, possibly empty
	Cause  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("harness launch failed for %s: %v", e.Spec.Describe(), e.Cause)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the CLI exit code for a launch failure.
func (e *LaunchError) ExitCode() int {
	return dderrors.ExitRuntimeError
}

// IsLaunchError returns true if the error is or wraps a LaunchError.
func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}

// Factory creates a driver that logs to logger.
type Factory func(logger *slog.Logger) Driver

// Registry maps driver keys to constructors.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in drivers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("dejagnu", func(logger *slog.Logger) Driver {
		return NewDejaGnuDriver(WithLogger(logger))
	})
	return r
}

// Register adds or replaces a driver constructor.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// New creates the driver registered under name.
func (r *Registry) New(name string, logger *slog.Logger) (Driver, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, dderrors.Configf("unknown driver %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(logger), nil
}

// Names returns the registered keys in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
