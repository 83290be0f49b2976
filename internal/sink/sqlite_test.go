package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

func openTestSQLite(t *testing.T, path string) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteEmptyArchive(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "runs.db"))

	prev, err := s.LoadPrevious(context.Background())
	require.NoError(t, err)
	assert.Empty(t, prev)
}

func TestSQLiteStoreAndLoadPrevious(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "runs.db"))

	require.NoError(t, s.Store(ctx, testPublication("r1")))

	prev, err := s.LoadPrevious(ctx)
	require.NoError(t, err)
	assert.Equal(t, regression.PreviousRun{
		"ld":  {UnexpectedFail: []string{}, UnexpectedPass: []string{}},
		"sim": {UnexpectedFail: []string{"gcc.dg/a.c", "gcc.dg/b.c"}, UnexpectedPass: []string{"gcc.dg/x.c"}},
	}, prev)

	var counts testparser.OutcomeCounts
	row := s.db.QueryRowContext(ctx, `SELECT expected_passes, unexpected_failures, unexpected_successes,
		expected_failures, unresolved_testcases, untested_testcases, unsupported_tests
		FROM suites WHERE key = 'sim'`)
	require.NoError(t, row.Scan(&counts[0], &counts[1], &counts[2], &counts[3], &counts[4], &counts[5], &counts[6]))
	assert.Equal(t, testparser.OutcomeCounts{120, 2, 1, 4, 0, 0, 17}, counts)

	var host string
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT value FROM environment WHERE name = 'Host Name'").Scan(&host))
	assert.Equal(t, "buildbox", host)

	var broken int
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM named_results WHERE kind = 'broken'").Scan(&broken))
	assert.Equal(t, 1, broken)
}

func TestSQLiteLoadsMostRecentRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	s := openTestSQLite(t, path)

	require.NoError(t, s.Store(ctx, testPublication("r1")))

	second := testPublication("r2")
	second.Results = results.New()
	second.Results.Put("sim", results.Entry{
		Suite: testparser.SuiteResult{Name: "sim", UnexpectedFail: []string{"gcc.dg/z.c", "gcc.dg/a.c"}},
	})
	require.NoError(t, s.Store(ctx, second))
	require.NoError(t, s.Close())

	reopened := openTestSQLite(t, path)
	prev, err := reopened.LoadPrevious(ctx)
	require.NoError(t, err)
	assert.Equal(t, regression.PreviousRun{
		"sim": {UnexpectedFail: []string{"gcc.dg/z.c", "gcc.dg/a.c"}, UnexpectedPass: []string{}},
	}, prev)
}

func TestSQLiteDuplicateRunIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "runs.db"))

	require.NoError(t, s.Store(ctx, testPublication("r1")))
	require.Error(t, s.Store(ctx, testPublication("r1")))

	var runs int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&runs))
	assert.Equal(t, 1, runs)
}

func TestSQLiteSchemaVersion(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "runs.db"))

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}
