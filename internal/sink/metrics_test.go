package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

func TestMetricsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dejadiff.prom")
	m := NewMetrics(path, nil)
	pub := testPublication("r1")

	require.NoError(t, m.Store(context.Background(), pub))

	assert.Equal(t, 120.0, testutil.ToFloat64(m.results.WithLabelValues("sim", "expected_passes")))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.results.WithLabelValues("sim", "unsupported_tests")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.newlyBroken.WithLabelValues("sim")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.newlyFixed.WithLabelValues("ld")))
	assert.Equal(t, float64(pub.Time.Unix()), testutil.ToFloat64(m.lastRun))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dejadiff_suite_newly_fixed{suite="sim"} 1`)
	assert.Contains(t, string(data), "# TYPE dejadiff_suite_results gauge")
}

func TestMetricsStoreResetsSuites(t *testing.T) {
	m := NewMetrics(filepath.Join(t.TempDir(), "dejadiff.prom"), nil)
	ctx := context.Background()
	require.NoError(t, m.Store(ctx, testPublication("r1")))

	next := testPublication("r2")
	next.Results = results.New()
	next.Results.Put("sim", results.Entry{Suite: testparser.SuiteResult{Name: "sim"}})
	require.NoError(t, m.Store(ctx, next))

	assert.Equal(t, testparser.NumOutcomes, testutil.CollectAndCount(m.results))
	assert.Equal(t, 1, testutil.CollectAndCount(m.newlyBroken))
}

func TestMetricsUnwritablePath(t *testing.T) {
	m := NewMetrics(filepath.Join(t.TempDir(), "missing", "dejadiff.prom"), nil)
	assert.Error(t, m.Store(context.Background(), testPublication("r1")))
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "unexpected_failures", outcomeLabel(testparser.UnexpectedFail))
}
