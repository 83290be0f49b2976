package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

// NextRowMarker is where IndexRow output is inserted into the index page.
const NextRowMarker = nextRowMarker

// NextKeyMarker returns the index page marker holding the next run number.
func NextKeyMarker(n int) string {
	return fmt.Sprintf(nextKeyMarkerTmpl, n)
}

// DefaultIndex returns a fresh index page.
func DefaultIndex(description string) string {
	return "This page contains the summary of test results for " + description + "\n" +
		"{|\n" +
		NextRowMarker + "\n" +
		"|}\n" +
		NextKeyMarker(1) + " "
}

// ResultTable lays out one cell per suite, width cells per row, suites in
// lexical key order.
func ResultTable(agg *results.Aggregate, width int) string {
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	b.WriteString("{|")
	for i, key := range agg.SortedKeys() {
		if i%width == 0 {
			b.WriteString("\n|-")
		}
		e, _ := agg.Get(key)
		b.WriteString(resultCell(key, e.Suite.Counts))
	}
	b.WriteString("\n|}\n")
	return b.String()
}

// resultCell formats one suite's non-zero counts, right-aligned to the
// widest count.
func resultCell(name string, counts testparser.OutcomeCounts) string {
	pad := len(strconv.Itoa(counts.Max()))
	var b strings.Builder
	fmt.Fprintf(&b, "\n|| '''%s'''<pre>", name)
	for _, o := range testparser.Outcomes {
		if n := counts.Get(o); n > 0 {
			fmt.Fprintf(&b, "\n%*d %s ", pad, n, o)
		}
	}
	b.WriteString("</pre>")
	return b.String()
}

// EnvTable formats environment metadata, keys in lexical order.
func EnvTable(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{|")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n|-\n! %s || %s", k, env[k])
	}
	b.WriteString("\n|}")
	return b.String()
}

// IndexRow returns the replacement for NextRowMarker: a new row linking run
// n, followed by the marker itself so the next run can insert above it.
func IndexRow(key string, n int, date, description, table string) string {
	return fmt.Sprintf("%s\n|-\n !! [[%s-Test-%d|Test %d]]<br>''%s''<br>''%s'' || %s ",
		NextRowMarker, key, n, n, date, description, table)
}

// TestPage returns the per-run wiki page.
func TestPage(key string, n int, envTable, resultTable string) string {
	return fmt.Sprintf(`
__NOTOC__
[[%[1]s-Test-%[2]d| &laquo; Previous Test]] | [[%[1]s-Test-%[3]d| Next Test &raquo;]]

''Note:'' As pass results may be large and push the limits of the wiki,
they are on a separate page, [[%[1]s-Passes-%[4]d|here]]. Lists of newly broken/fixed
tests can be found [[%[1]s-Changed-%[4]d|here]].
== Test Environment ==
%[5]s
== Test Results ==
%[6]s
`, key, n-1, n+1, n, envTable, resultTable)
}

// NotificationTitle returns the desktop notification title for a suite.
func NotificationTitle(key string) string {
	return "Test Complete: " + key
}

// NotificationBody summarises a suite's non-zero counts in one line.
func NotificationBody(counts testparser.OutcomeCounts) string {
	var b strings.Builder
	b.WriteString("Results:")
	for _, o := range testparser.Outcomes {
		if n := counts.Get(o); n > 0 {
			fmt.Fprintf(&b, " %d %s.", n, o)
		}
	}
	return b.String()
}
