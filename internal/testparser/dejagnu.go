package testparser

import (
	"bufio"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// Suite boundary, e.g. "		=== gcc tests ===".
// Compiled once at package init.
var dejagnuBoundaryRegex = regexp.MustCompile(`^\s*=== (.*) tests ===`)

// Summary labels printed by runtest at the end of each suite, indexed by Outcome.
var dejagnuSummaryLabels = [NumOutcomes]string{
	"# of expected passes",
	"# of unexpected failures",
	"# of unexpected successes",
	"# of expected failures",
	"# of unresolved testcases",
	"# of untested testcases",
	"# of unsupported tests",
}

const (
	dejagnuFailMarker  = "FAIL: "
	dejagnuXPassMarker = "XPASS: "
)

// DejaGnuParser parses transcripts produced by DejaGnu's runtest.
type DejaGnuParser struct{}

// Name returns the parser name.
func (p *DejaGnuParser) Name() string {
	return "dejagnu"
}

// Parse scans runtest output. A runtest transcript looks like:
//
//			=== gcc tests ===
//	FAIL: gcc.dg/foo.c (test for excess errors)
//	XPASS: gcc.dg/bar.c execution test
//
//			=== gcc Summary ===
//
//	# of expected passes		10
//	# of unexpected failures	1
//
// Lines before the first boundary belong to no suite and are dropped.
// Unrecognised lines are ignored.
func (p *DejaGnuParser) Parse(r io.Reader) iter.Seq[SuiteResult] {
	used := false
	return func(yield func(SuiteResult) bool) {
		if used {
			return
		}
		used = true

		var current *SuiteResult
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
				if m := dejagnuBoundaryRegex.FindStringSubmatch(line); m != nil {
					if current != nil && !yield(*current) {
						return
					}
					current = &SuiteResult{Name: m[1]}
				} else if current != nil {
					scanDejaGnuLine(current, line)
				}
			}
			if err != nil {
				// io.EOF or a read error both end the transcript.
				break
			}
		}

		if current != nil {
			yield(*current)
		}
	}
}

// scanDejaGnuLine applies one non-boundary line to the open suite.
func scanDejaGnuLine(s *SuiteResult, line string) {
	switch {
	case strings.HasPrefix(line, dejagnuFailMarker):
		s.UnexpectedFail = append(s.UnexpectedFail, line[len(dejagnuFailMarker):])
		return
	case strings.HasPrefix(line, dejagnuXPassMarker):
		s.UnexpectedPass = append(s.UnexpectedPass, line[len(dejagnuXPassMarker):])
		return
	}

	for i, label := range dejagnuSummaryLabels {
		if !strings.Contains(line, label) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.Replace(line, label, "", 1)))
		if err == nil && n >= 0 {
			s.Counts[i] = n
		}
		return
	}
}
