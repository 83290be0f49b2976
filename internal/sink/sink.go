// Package sink publishes finished runs and supplies the previous run for
// comparison.
package sink

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
)

// Publication is everything a sink receives after a successful run.
type Publication struct {
	RunID       string
	Description string
	Time        time.Time
	Results     *results.Aggregate
	Env         map[string]string
}

// Sink archives or reports a finished run.
type Sink interface {
	// Name returns the registry key of the sink.
	Name() string
	// LoadPrevious returns the results archived by the last run. Sinks that
	// keep no archive return an empty PreviousRun.
	LoadPrevious(ctx context.Context) (regression.PreviousRun, error)
	// Store publishes a finished run.
	Store(ctx context.Context, pub Publication) error
	// Close releases resources held by the sink.
	Close() error
}

// Deps are the shared collaborators handed to every sink.
type Deps struct {
	Logger *slog.Logger
	Out    io.Writer // Terminal output for interactive sinks
	Cwd    string    // Base for relative paths in configuration
}
