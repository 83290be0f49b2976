package sink

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

const metricsNamespace = "dejadiff"

// Metrics writes the latest run as a Prometheus textfile, for collection
// by the node exporter's textfile collector.
type Metrics struct {
	path     string
	registry *prometheus.Registry
	logger   *slog.Logger

	results     *prometheus.GaugeVec
	newlyBroken *prometheus.GaugeVec
	newlyFixed  *prometheus.GaugeVec
	lastRun     prometheus.Gauge
}

// NewMetrics creates a metrics sink writing to path. Each sink owns its
// registry, so the file holds only the metrics of one run.
func NewMetrics(path string, logger *slog.Logger) *Metrics {
	m := &Metrics{
		path:     path,
		registry: prometheus.NewRegistry(),
		logger:   logging.OrDiscard(logger),

		results: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_results",
			Help:      "Number of tests per outcome reported by a suite",
		}, []string{
			"suite",
			"outcome",
		}),
		newlyBroken: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_newly_broken",
			Help:      "Number of tests that newly fail or unexpectedly pass",
		}, []string{
			"suite",
		}),
		newlyFixed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_newly_fixed",
			Help:      "Number of tests that no longer fail or unexpectedly pass",
		}, []string{
			"suite",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last published run",
		}),
	}
	m.registry.MustRegister(m.results, m.newlyBroken, m.newlyFixed, m.lastRun)
	return m
}

// Name returns the sink name.
func (m *Metrics) Name() string { return "metrics" }

// LoadPrevious returns an empty previous run.
func (m *Metrics) LoadPrevious(context.Context) (regression.PreviousRun, error) {
	return regression.PreviousRun{}, nil
}

// Store records the run and rewrites the textfile.
func (m *Metrics) Store(_ context.Context, pub Publication) error {
	m.results.Reset()
	m.newlyBroken.Reset()
	m.newlyFixed.Reset()

	for _, key := range pub.Results.Keys() {
		e, _ := pub.Results.Get(key)
		for _, o := range testparser.Outcomes {
			m.results.WithLabelValues(key, outcomeLabel(o)).Set(float64(e.Suite.Counts.Get(o)))
		}
		m.newlyBroken.WithLabelValues(key).Set(float64(len(e.Diff.NewlyBroken)))
		m.newlyFixed.WithLabelValues(key).Set(float64(len(e.Diff.NewlyFixed)))
	}
	m.lastRun.Set(float64(pub.Time.Unix()))

	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return dderrors.Wrap(err, "write metrics textfile")
	}
	m.logger.Debug("wrote metrics", "path", m.path)
	return nil
}

// Close does nothing.
func (m *Metrics) Close() error { return nil }

// outcomeLabel turns "expected passes" into "expected_passes".
func outcomeLabel(o testparser.Outcome) string {
	return strings.ReplaceAll(o.String(), " ", "_")
}
