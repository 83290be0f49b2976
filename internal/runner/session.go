package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/AndreyAkinshin/dejadiff/internal/collector"
	"github.com/AndreyAkinshin/dejadiff/internal/config"
	"github.com/AndreyAkinshin/dejadiff/internal/driver"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/sink"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

// KeyRunID is the environment entry holding the run identifier.
const KeyRunID = "Run ID"

// SessionOptions configures NewSession. Nil registries use the built-ins.
type SessionOptions struct {
	Cwd      string       // Base for relative paths in configuration
	Logger   *slog.Logger // Nil discards logs
	Out      io.Writer    // Terminal output for interactive sinks
	Progress Progress
	DryRun   bool   // Run and diff, but publish nowhere
	RunID    string // Empty generates a random UUID
	Now      func() time.Time

	Drivers    *driver.Registry
	Parsers    *testparser.Registry
	Sinks      *sink.Registry
	Collectors *collector.Registry
}

// Session holds everything one run needs, built once from the
// configuration.
type Session struct {
	cfg          *config.Config
	runID        string
	now          func() time.Time
	dryRun       bool
	logger       *slog.Logger
	orchestrator *Orchestrator
	sinks        []sink.Sink
	collectors   []collector.Collector
}

// Report is the outcome of a successful run.
type Report struct {
	RunID     string
	Env       map[string]string
	Results   *results.Aggregate
	Published []string // Sinks that stored the run
}

// CleanupResult records a component that failed to close.
type CleanupResult struct {
	Component string
	Err       error
}

// NewSession resolves the driver, parser, sinks and collectors named in
// cfg. Unknown names are configuration errors; a sink or collector that
// cannot be set up is an environment error. On error, components already
// created are closed.
func NewSession(ctx context.Context, cfg *config.Config, opts SessionOptions) (*Session, error) {
	logger := logging.OrDiscard(opts.Logger)
	if opts.Drivers == nil {
		opts.Drivers = driver.NewRegistry()
	}
	if opts.Parsers == nil {
		opts.Parsers = testparser.NewRegistry()
	}
	if opts.Sinks == nil {
		opts.Sinks = sink.NewRegistry()
	}
	if opts.Collectors == nil {
		opts.Collectors = collector.NewRegistry()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	d, err := opts.Drivers.New(cfg.Driver, logging.Subsystem(logger, "driver"))
	if err != nil {
		return nil, err
	}
	p := opts.Parsers.GetParser(cfg.Driver)
	if p == nil {
		return nil, dderrors.Configf("no transcript parser for driver %q", cfg.Driver)
	}

	s := &Session{
		cfg:    cfg,
		runID:  opts.RunID,
		now:    opts.Now,
		dryRun: opts.DryRun,
		logger: logger,
		orchestrator: NewOrchestrator(d, p, cfg.TestSpecs(opts.Cwd),
			WithLogger(logging.Subsystem(logger, "runner")),
			WithProgress(opts.Progress)),
	}

	sinkDeps := sink.Deps{Logger: logger, Out: opts.Out, Cwd: opts.Cwd}
	for _, name := range cfg.Sinks {
		sk, err := opts.Sinks.New(ctx, name, cfg, sinkDeps)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.sinks = append(s.sinks, sk)
	}

	collectorDeps := collector.Deps{Logger: logger, Cwd: opts.Cwd}
	for _, name := range cfg.Collectors {
		c, err := opts.Collectors.New(name, cfg, collectorDeps)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.collectors = append(s.collectors, c)
	}

	return s, nil
}

// RunID returns the identifier of the run.
func (s *Session) RunID() string {
	return s.runID
}

// Execute collects the environment, loads the previous run from the first
// sink, runs every spec and publishes the results to every sink.
//
// A driver error is returned as is and nothing is published. Store errors
// are reported after every sink has been tried.
func (s *Session) Execute(ctx context.Context) (*Report, error) {
	start := s.now()
	env := s.collect(ctx)
	previous := s.loadPrevious(ctx)

	agg, err := s.orchestrator.Run(ctx, previous)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: s.runID, Env: env, Results: agg}
	if s.dryRun {
		s.logger.Info("dry run, not publishing", "suites", agg.Len())
		return report, nil
	}

	pub := sink.Publication{
		RunID:       s.runID,
		Description: s.cfg.Description,
		Time:        start,
		Results:     agg,
		Env:         maps.Clone(env),
	}
	var errs []error
	for _, sk := range s.sinks {
		if err := sk.Store(ctx, pub); err != nil {
			errs = append(errs, dderrors.Wrap(err, "publish to "+sk.Name()))
			continue
		}
		report.Published = append(report.Published, sk.Name())
	}
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

// collect runs every collector. Collector errors are logged and skipped.
func (s *Session) collect(ctx context.Context) map[string]string {
	env := map[string]string{KeyRunID: s.runID}
	for _, c := range s.collectors {
		if err := c.Collect(ctx, env); err != nil {
			s.logger.Warn("collector failed", "collector", c.Name(), "error", err)
		}
	}
	return env
}

// loadPrevious asks the first sink for the previous run. Failures degrade
// to an empty previous run.
func (s *Session) loadPrevious(ctx context.Context) regression.PreviousRun {
	if len(s.sinks) == 0 {
		return regression.PreviousRun{}
	}
	first := s.sinks[0]
	prev, err := first.LoadPrevious(ctx)
	if err != nil {
		if !dderrors.IsKind(err, dderrors.KindArchive) {
			err = dderrors.ArchiveUnavailable(first.Name(), err)
		}
		s.logger.Warn("previous run unavailable, treating every failure as new", "sink", first.Name(), "error", err)
		return regression.PreviousRun{}
	}
	s.logger.Debug("loaded previous run", "sink", first.Name(), "suites", len(prev))
	return prev
}

// Close closes every sink and collector and returns those that failed.
// Failures are logged as warnings.
func (s *Session) Close() []CleanupResult {
	var failed []CleanupResult
	for _, sk := range s.sinks {
		if err := sk.Close(); err != nil {
			failed = append(failed, CleanupResult{Component: "sink " + sk.Name(), Err: err})
		}
	}
	for _, c := range s.collectors {
		if err := c.Close(); err != nil {
			failed = append(failed, CleanupResult{Component: "collector " + c.Name(), Err: err})
		}
	}
	for _, f := range failed {
		s.logger.Warn("cleanup failed", "component", f.Component, "error", f.Err)
	}
	return failed
}
