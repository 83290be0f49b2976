// Package runner sequences harness invocations into a run and publishes
// the results.
package runner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AndreyAkinshin/dejadiff/internal/driver"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

// Progress receives per-invocation progress. *output.Writer satisfies it.
type Progress interface {
	SpecStart(desc string)
	SpecDone(desc string, suites int)
}

type noProgress struct{}

func (noProgress) SpecStart(string)     {}
func (noProgress) SpecDone(string, int) {}

// Orchestrator runs every TestSpec in order and accumulates the results.
type Orchestrator struct {
	driver   driver.Driver
	parser   testparser.Parser
	specs    []driver.TestSpec
	logger   *slog.Logger
	progress Progress
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logging.OrDiscard(logger)
	}
}

// WithProgress reports each invocation to p.
func WithProgress(p Progress) OrchestratorOption {
	return func(o *Orchestrator) {
		if p != nil {
			o.progress = p
		}
	}
}

// NewOrchestrator creates an orchestrator for specs, in configuration order.
func NewOrchestrator(d driver.Driver, p testparser.Parser, specs []driver.TestSpec, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		driver:   d,
		parser:   p,
		specs:    specs,
		logger:   logging.Discard(),
		progress: noProgress{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run invokes the driver for each spec, parses each transcript and diffs
// every suite against previous. A suite key produced twice keeps the later
// result. The first driver error aborts the run: later specs are not
// invoked and no aggregate is returned.
func (o *Orchestrator) Run(ctx context.Context, previous regression.PreviousRun) (*results.Aggregate, error) {
	agg := results.New()

	for _, spec := range o.specs {
		if err := ctx.Err(); err != nil {
			return nil, dderrors.Wrap(err, "run interrupted")
		}

		desc := spec.Describe()
		o.progress.SpecStart(desc)
		o.logger.Debug("invoking harness", "dir", spec.Directory, "command", strings.Join(spec.Command, " "), "site", spec.Site)

		transcript, err := o.driver.Run(ctx, spec)
		if err != nil {
			return nil, err
		}

		n := 0
		for suite := range o.parser.Parse(strings.NewReader(transcript)) {
			key := spec.Key(suite.Name)
			suite.Name = key

			prev := previous.Lookup(key)
			replaced := agg.Put(key, results.Entry{
				Suite:       suite,
				Diff:        regression.Diff(suite, prev),
				HasPrevious: prev != nil,
			})
			if replaced {
				o.logger.Debug("suite key produced again, keeping later result", "suite", key, "spec", desc)
			}
			n++
		}

		o.logger.Info("harness finished", "spec", desc, "suites", n)
		o.progress.SpecDone(desc, n)
	}

	return agg, nil
}
