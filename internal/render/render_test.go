package render

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// fixtureAggregate is a three-suite run: gcc with failures and changes,
// g++ with one new failure, and an all-zero ld suite.
func fixtureAggregate() *results.Aggregate {
	agg := results.New()
	agg.Put("gcc", results.Entry{
		Suite: testparser.SuiteResult{
			Name:   "gcc",
			Counts: testparser.OutcomeCounts{73912, 2, 1, 245, 3, 39, 1208},
			UnexpectedFail: []string{
				"gcc.c-torture/compile/pr35318.c  -O0  (test for excess errors)",
				"gcc.dg/torture/pr51106-2.c  -O1  (internal compiler error)",
			},
			UnexpectedPass: []string{"gcc.dg/Wtrampolines.c (test for warnings, line 31)"},
		},
		Diff: regression.DiffSet{
			NewlyBroken: []string{"gcc.dg/torture/pr51106-2.c  -O1  (internal compiler error)"},
			NewlyFixed:  []string{"gcc.dg/pr48000.c (test for excess errors)"},
		},
		HasPrevious: true,
	})
	agg.Put("g++", results.Entry{
		Suite: testparser.SuiteResult{
			Name:           "g++",
			Counts:         testparser.OutcomeCounts{25071, 1, 0, 0, 0, 0, 0},
			UnexpectedFail: []string{"g++.dg/eh/cleanup1.C (test for excess errors)"},
		},
		Diff: regression.DiffSet{
			NewlyBroken: []string{"g++.dg/eh/cleanup1.C (test for excess errors)"},
			NewlyFixed:  []string{},
		},
	})
	agg.Put("ld", results.Entry{
		Suite: testparser.SuiteResult{Name: "ld"},
		Diff:  regression.DiffSet{NewlyBroken: []string{}, NewlyFixed: []string{}},
	})
	return agg
}

func fixtureEnv() map[string]string {
	return map[string]string{
		"Test Date":   "Oct 16, 2026 09:30",
		"Host Name":   "buildbox",
		"Host Kernel": "6.1.0-18-amd64",
		"git_gcc":     "4f2c9e1d0b7a8c6e5f4d3c2b1a0f9e8d7c6b5a49*",
	}
}

func TestPassesPageGolden(t *testing.T) {
	newGoldie(t).Assert(t, "passes_page", []byte(PassesPage(fixtureAggregate())))
}

func TestChangedPageGolden(t *testing.T) {
	newGoldie(t).Assert(t, "changed_page", []byte(ChangedPage(fixtureAggregate())))
}

func TestResultTableGolden(t *testing.T) {
	newGoldie(t).Assert(t, "result_table", []byte(ResultTable(fixtureAggregate(), 2)))
}

func TestTestPageGolden(t *testing.T) {
	agg := fixtureAggregate()
	page := TestPage("gcc", 3, EnvTable(fixtureEnv()), ResultTable(agg, 3))
	newGoldie(t).Assert(t, "test_page", []byte(page))
}

func TestIndexGolden(t *testing.T) {
	agg := fixtureAggregate()
	index := DefaultIndex("GCC on or1k")
	row := IndexRow("gcc", 1, "Oct 16, 2026 09:30", "nightly", ResultTable(agg, 2))
	index = strings.Replace(index, NextRowMarker, row, 1)
	index = strings.Replace(index, NextKeyMarker(1), NextKeyMarker(2), 1)
	newGoldie(t).Assert(t, "index", []byte(index))
}

func TestParsePassesPageRoundTrip(t *testing.T) {
	agg := fixtureAggregate()

	prev, err := ParsePassesPage(strings.NewReader(PassesPage(agg)))
	require.NoError(t, err)

	assert.Equal(t, regression.FromSuites(agg.Suites()), normalizeEmpty(prev))
}

// normalizeEmpty maps empty lists to nil so they compare equal to FromSuites output.
func normalizeEmpty(prev regression.PreviousRun) regression.PreviousRun {
	out := make(regression.PreviousRun, len(prev))
	for k, v := range prev {
		if len(v.UnexpectedFail) == 0 {
			v.UnexpectedFail = nil
		}
		if len(v.UnexpectedPass) == 0 {
			v.UnexpectedPass = nil
		}
		out[k] = v
	}
	return out
}

func TestParsePassesPage(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected regression.PreviousRun
	}{
		{
			name:     "empty page",
			page:     "",
			expected: regression.PreviousRun{},
		},
		{
			name: "crlf and blank lines",
			page: "## sim\r\n### Unexpected Failures\r\n    a.c\r\n\r\n### Unexpected Passes\r\n    x.c\r\n",
			expected: regression.PreviousRun{
				"sim": {UnexpectedFail: []string{"a.c"}, UnexpectedPass: []string{"x.c"}},
			},
		},
		{
			name: "items outside a known list are skipped",
			page: "    orphan.c\n## sim\n    early.c\n### Newly Broken\n    b.c\n### Unexpected Failures\n    a.c\n",
			expected: regression.PreviousRun{
				"sim": {UnexpectedFail: []string{"a.c"}, UnexpectedPass: []string{}},
			},
		},
		{
			name: "repeated suite keeps the last",
			page: "## sim\n### Unexpected Failures\n    a.c\n## sim\n### Unexpected Failures\n    b.c\n",
			expected: regression.PreviousRun{
				"sim": {UnexpectedFail: []string{"b.c"}, UnexpectedPass: []string{}},
			},
		},
		{
			name: "names keep inner spacing",
			page: "## gcc\n### Unexpected Failures\n    pr35318.c  -O0  (test for excess errors)\n",
			expected: regression.PreviousRun{
				"gcc": {UnexpectedFail: []string{"pr35318.c  -O0  (test for excess errors)"}, UnexpectedPass: []string{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePassesPage(strings.NewReader(tt.page))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResultCellPadding(t *testing.T) {
	tests := []struct {
		name     string
		counts   testparser.OutcomeCounts
		expected string
	}{
		{
			name:     "power of ten",
			counts:   testparser.OutcomeCounts{100, 5},
			expected: "\n|| '''s'''<pre>\n100 expected passes \n  5 unexpected failures </pre>",
		},
		{
			name:     "all zero",
			counts:   testparser.OutcomeCounts{},
			expected: "\n|| '''s'''<pre></pre>",
		},
		{
			name:     "single digit",
			counts:   testparser.OutcomeCounts{0, 0, 0, 0, 0, 0, 1},
			expected: "\n|| '''s'''<pre>\n1 unsupported tests </pre>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resultCell("s", tt.counts))
		})
	}
}

func TestResultTableEmptyAndWidth(t *testing.T) {
	assert.Equal(t, "{|\n|}\n", ResultTable(results.New(), 2))

	agg := results.New()
	agg.Put("a", results.Entry{})
	agg.Put("b", results.Entry{})
	assert.Equal(t, 2, strings.Count(ResultTable(agg, 0), "\n|-"), "width below one lays out one per row")
}

func TestEnvTable(t *testing.T) {
	assert.Equal(t, "{|\n|}", EnvTable(nil))
	assert.Equal(t,
		"{|\n|-\n! A || 1\n|-\n! B || 2\n|}",
		EnvTable(map[string]string{"B": "2", "A": "1"}))
}

func TestNotification(t *testing.T) {
	assert.Equal(t, "Test Complete: or1k-gcc", NotificationTitle("or1k-gcc"))
	assert.Equal(t,
		"Results: 10 expected passes. 1 unexpected failures. 4 unsupported tests.",
		NotificationBody(testparser.OutcomeCounts{10, 1, 0, 0, 0, 0, 4}))
	assert.Equal(t, "Results:", NotificationBody(testparser.OutcomeCounts{}))
}

func TestDefaultIndexMarkers(t *testing.T) {
	index := DefaultIndex("x")
	assert.Contains(t, index, NextRowMarker)
	assert.Contains(t, index, "<!-- ## NEXTKEY 1 ## -->")
}
