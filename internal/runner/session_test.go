package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/dejadiff/internal/collector"
	"github.com/AndreyAkinshin/dejadiff/internal/config"
	"github.com/AndreyAkinshin/dejadiff/internal/driver"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/sink"
	"github.com/AndreyAkinshin/dejadiff/internal/testing/mocks"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

type staticCollector struct {
	name string
	env  map[string]string
	err  error
}

func (c *staticCollector) Name() string { return c.name }

func (c *staticCollector) Collect(_ context.Context, env map[string]string) error {
	for k, v := range c.env {
		env[k] = v
	}
	return c.err
}

func (c *staticCollector) Close() error { return nil }

type fixture struct {
	cfg        *config.Config
	opts       SessionOptions
	driver     *mocks.Driver
	archive    *mocks.Sink
	mirror     *mocks.Sink
	collectors []*staticCollector
	logs       *bytes.Buffer
}

func newFixture() *fixture {
	f := &fixture{
		cfg: &config.Config{
			Description: "nightly",
			Driver:      "scripted",
			Sinks:       []string{"archive", "mirror"},
			Collectors:  []string{"host", "broken"},
			DejaGnu: config.DejaGnuConfig{Tests: []config.TestConfig{
				{Dir: "/build/gcc", Command: config.Command{"make", "check"}},
			}},
		},
		driver: mocks.NewDriver("scripted").
			WithTranscript("/build/gcc", "=== gcc tests ===\n# of expected passes 5\nFAIL: new.c\n"),
		archive: mocks.NewSink("archive").WithPrevious(regression.PreviousRun{
			"gcc": {UnexpectedFail: []string{"old.c"}},
		}),
		mirror: mocks.NewSink("mirror"),
		collectors: []*staticCollector{
			{name: "host", env: map[string]string{"Host Name": "buildbox"}},
			{name: "broken", err: errors.New("no uname")},
		},
		logs: &bytes.Buffer{},
	}

	drivers := driver.NewRegistry()
	drivers.Register("scripted", func(*slog.Logger) driver.Driver { return f.driver })
	parsers := testparser.NewRegistry()
	parsers.RegisterParser("scripted", &testparser.DejaGnuParser{})
	sinks := sink.NewRegistry()
	for _, m := range []*mocks.Sink{f.archive, f.mirror} {
		sinks.Register(m.Name(), func(context.Context, *config.Config, sink.Deps) (sink.Sink, error) { return m, nil })
	}
	collectors := collector.NewRegistry()
	for _, c := range f.collectors {
		collectors.Register(c.name, func(*config.Config, collector.Deps) (collector.Collector, error) { return c, nil })
	}

	f.opts = SessionOptions{
		Cwd:        "/",
		Logger:     slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		RunID:      "run-1",
		Now:        func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) },
		Drivers:    drivers,
		Parsers:    parsers,
		Sinks:      sinks,
		Collectors: collectors,
	}
	return f
}

func (f *fixture) session(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	return s
}

func TestSessionExecute(t *testing.T) {
	f := newFixture()
	s := f.session(t)

	report, err := s.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, map[string]string{"Run ID": "run-1", "Host Name": "buildbox"}, report.Env)
	assert.Equal(t, []string{"archive", "mirror"}, report.Published)

	gcc, ok := report.Results.Get("gcc")
	require.True(t, ok)
	assert.Equal(t, []string{"new.c"}, gcc.Diff.NewlyBroken)
	assert.Equal(t, []string{"old.c"}, gcc.Diff.NewlyFixed)

	require.Len(t, f.archive.Stored(), 1)
	require.Len(t, f.mirror.Stored(), 1)
	pub := f.mirror.Stored()[0]
	assert.Equal(t, "nightly", pub.Description)
	assert.Equal(t, "run-1", pub.RunID)
	assert.Same(t, report.Results, pub.Results)

	assert.Contains(t, f.logs.String(), "collector failed")
	assert.Empty(t, s.Close())
	assert.True(t, f.archive.Closed())
	assert.True(t, f.mirror.Closed())
}

func TestSessionDryRunPublishesNothing(t *testing.T) {
	f := newFixture()
	f.opts.DryRun = true

	report, err := f.session(t).Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Published)
	assert.Empty(t, f.archive.Stored())
	assert.Empty(t, f.mirror.Stored())
	assert.Equal(t, 1, report.Results.Len())
}

func TestSessionArchiveUnavailable(t *testing.T) {
	f := newFixture()
	f.archive.WithLoadError(errors.New("index locked"))

	report, err := f.session(t).Execute(context.Background())
	require.NoError(t, err)

	gcc, _ := report.Results.Get("gcc")
	assert.False(t, gcc.HasPrevious)
	assert.Equal(t, []string{"new.c"}, gcc.Diff.NewlyBroken)
	assert.Empty(t, gcc.Diff.NewlyFixed)
	assert.Contains(t, f.logs.String(), "previous run unavailable")
}

func TestSessionLaunchErrorPublishesNothing(t *testing.T) {
	f := newFixture()
	f.driver.WithFailure("/build/gcc", errors.New("permission denied"))

	report, err := f.session(t).Execute(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, driver.IsLaunchError(err))
	assert.Empty(t, f.archive.Stored())
	assert.Empty(t, f.mirror.Stored())
}

func TestSessionStoreErrorTriesEverySink(t *testing.T) {
	f := newFixture()
	f.archive.WithStoreError(errors.New("disk full"))

	report, err := f.session(t).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to archive")
	assert.Equal(t, dderrors.ExitRuntimeError, dderrors.GetExitCode(err))
	require.NotNil(t, report)
	assert.Equal(t, []string{"mirror"}, report.Published)
	assert.Len(t, f.mirror.Stored(), 1)
}

func TestSessionCloseCollectsFailures(t *testing.T) {
	f := newFixture()
	f.mirror.WithCloseError(errors.New("flush failed"))
	s := f.session(t)

	failed := s.Close()
	require.Len(t, failed, 1)
	assert.Equal(t, "sink mirror", failed[0].Component)
	assert.EqualError(t, failed[0].Err, "flush failed")
	assert.True(t, f.archive.Closed(), "remaining components are still closed")
	assert.Contains(t, f.logs.String(), "cleanup failed")
}

func TestNewSessionUnknownComponents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"driver", func(cfg *config.Config) { cfg.Driver = "pytest" }},
		{"sink", func(cfg *config.Config) { cfg.Sinks = []string{"archive", "mediawiki"} }},
		{"collector", func(cfg *config.Config) { cfg.Collectors = []string{"preloader"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.mutate(f.cfg)

			_, err := NewSession(context.Background(), f.cfg, f.opts)
			require.Error(t, err)
			assert.Equal(t, dderrors.ExitConfigError, dderrors.GetExitCode(err))
		})
	}
}

func TestNewSessionClosesSinksOnFailure(t *testing.T) {
	f := newFixture()
	f.cfg.Collectors = []string{"preloader"}

	_, err := NewSession(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.True(t, f.archive.Closed())
	assert.True(t, f.mirror.Closed())
}

func TestNewSessionGeneratesRunID(t *testing.T) {
	f := newFixture()
	f.opts.RunID = ""

	s := f.session(t)
	assert.Len(t, s.RunID(), 36)
}
