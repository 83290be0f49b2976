package sink

import (
	"context"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
)

// DevNull discards results and never has a previous run.
type DevNull struct{}

// Name returns the sink name.
func (DevNull) Name() string { return "devnull" }

// LoadPrevious returns an empty previous run.
func (DevNull) LoadPrevious(context.Context) (regression.PreviousRun, error) {
	return regression.PreviousRun{}, nil
}

// Store does nothing.
func (DevNull) Store(context.Context, Publication) error { return nil }

// Close does nothing.
func (DevNull) Close() error { return nil }
