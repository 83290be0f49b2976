// Package render formats run results as wiki pages, archive pages and
// notification text.
//
// The archive pages (PassesPage and ChangedPage) are plain markdown:
//
//	## gcc
//	### Unexpected Failures
//	    gcc.dg/foo.c (test for excess errors)
//	### Unexpected Passes
//
// ParsePassesPage reads PassesPage output back into a regression.PreviousRun.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
)

const (
	suiteHeading      = "## "
	listHeading       = "### "
	itemIndent        = "    "
	failuresHeading   = "### Unexpected Failures"
	passesHeading     = "### Unexpected Passes"
	brokenHeading     = "### Newly Broken"
	fixedHeading      = "### Newly Fixed"
	nextRowMarker     = "<!-- ## NEXTROW ## -->"
	nextKeyMarkerTmpl = "<!-- ## NEXTKEY %d ## -->"
)

// PassesPage lists every suite's unexpected failures and passes, suites in
// lexical key order.
func PassesPage(agg *results.Aggregate) string {
	var b strings.Builder
	for _, key := range agg.SortedKeys() {
		e, _ := agg.Get(key)
		writeSection(&b, key,
			failuresHeading, e.Suite.UnexpectedFail,
			passesHeading, e.Suite.UnexpectedPass)
	}
	return b.String()
}

// ChangedPage lists every suite's newly broken and newly fixed tests.
func ChangedPage(agg *results.Aggregate) string {
	var b strings.Builder
	for _, key := range agg.SortedKeys() {
		e, _ := agg.Get(key)
		writeSection(&b, key,
			brokenHeading, e.Diff.NewlyBroken,
			fixedHeading, e.Diff.NewlyFixed)
	}
	return b.String()
}

func writeSection(b *strings.Builder, key, firstHeading string, first []string, secondHeading string, second []string) {
	b.WriteString(suiteHeading + key + "\n")
	b.WriteString(firstHeading + "\n")
	for _, name := range first {
		b.WriteString(itemIndent + name + "\n")
	}
	b.WriteString(secondHeading + "\n")
	for _, name := range second {
		b.WriteString(itemIndent + name + "\n")
	}
	b.WriteString("\n")
}

// ParsePassesPage reads a page written by PassesPage.
//
// Item lines before any list heading, and unknown list headings, are
// skipped. Blank lines are ignored.
func ParsePassesPage(r io.Reader) (regression.PreviousRun, error) {
	prev := make(regression.PreviousRun)
	var (
		key  string
		list *[]string
		cur  regression.PreviousSuite
		open bool
	)
	flush := func() {
		if open {
			prev[key] = cur
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, suiteHeading):
			flush()
			key = line[len(suiteHeading):]
			cur = regression.PreviousSuite{UnexpectedFail: []string{}, UnexpectedPass: []string{}}
			list = nil
			open = true
		case strings.HasPrefix(line, listHeading):
			switch line {
			case failuresHeading:
				list = &cur.UnexpectedFail
			case passesHeading:
				list = &cur.UnexpectedPass
			default:
				list = nil
			}
		case strings.HasPrefix(line, itemIndent) && list != nil:
			*list = append(*list, line[len(itemIndent):])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read passes page: %w", err)
	}
	flush()
	return prev, nil
}
