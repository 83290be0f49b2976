package sink

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/render"
)

var nextKeyRegex = regexp.MustCompile(`<!-- ## NEXTKEY ([0-9]*) ## -->`)

// Index page cells per row; per-run pages use resultTableWidth.
const (
	indexTableWidth  = 2
	resultTableWidth = 3
)

// wikiRun is the set of pages written for one archived run.
type wikiRun struct {
	N       int
	Index   string // Updated index page
	Test    string
	Passes  string
	Changed string
}

// newWikiRun inserts a row for pub into index and renders the run pages.
// indexName only appears in errors.
func newWikiRun(index, indexName, key string, pub Publication) (wikiRun, error) {
	n, ok := parseNextKey(index)
	if !ok {
		return wikiRun{}, dderrors.Newf("unable to parse wiki index %s: no NEXTKEY marker", indexName)
	}

	date := pub.Env["Test Date"]
	row := render.IndexRow(key, n, date, pub.Description, render.ResultTable(pub.Results, indexTableWidth))
	index = strings.Replace(index, render.NextRowMarker, row, 1)
	index = strings.Replace(index, render.NextKeyMarker(n), render.NextKeyMarker(n+1), 1)

	return wikiRun{
		N:     n,
		Index: index,
		Test: render.TestPage(key, n,
			render.EnvTable(pub.Env), render.ResultTable(pub.Results, resultTableWidth)),
		Passes:  render.PassesPage(pub.Results),
		Changed: render.ChangedPage(pub.Results),
	}, nil
}

func wikiSummary(key string, n int) string {
	return fmt.Sprintf("Updated wiki for test %s-%d", key, n)
}

// parseNextKey extracts the next run number from an index page.
func parseNextKey(index string) (int, bool) {
	m := nextKeyRegex.FindStringSubmatch(index)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
