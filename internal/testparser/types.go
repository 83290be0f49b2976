// Package testparser turns harness transcripts into per-suite results.
package testparser

import (
	"io"
	"iter"
	"slices"
	"strings"
)

// Outcome identifies one of the fixed outcome categories a harness reports.
type Outcome int

// Outcome categories, in the order counts are stored and rendered.
const (
	ExpectedPass Outcome = iota
	UnexpectedFail
	UnexpectedPass
	ExpectedFail
	Unresolved
	Untested
	Unsupported

	NumOutcomes = int(Unsupported) + 1
)

// Outcomes lists every outcome in storage order.
var Outcomes = [NumOutcomes]Outcome{
	ExpectedPass, UnexpectedFail, UnexpectedPass, ExpectedFail, Unresolved, Untested, Unsupported,
}

var outcomeNames = [NumOutcomes]string{
	"expected passes",
	"unexpected failures",
	"unexpected successes",
	"expected failures",
	"unresolved testcases",
	"untested testcases",
	"unsupported tests",
}

// String returns the plural phrase the harness uses for the outcome,
// e.g. "expected passes".
func (o Outcome) String() string {
	if o < 0 || int(o) >= NumOutcomes {
		return "unknown"
	}
	return outcomeNames[o]
}

// OutcomeCounts holds one count per Outcome. The zero value is all zeroes.
type OutcomeCounts [NumOutcomes]int

// Get returns the count for an outcome.
func (c OutcomeCounts) Get(o Outcome) int {
	return c[o]
}

// Max returns the largest count.
func (c OutcomeCounts) Max() int {
	return slices.Max(c[:])
}

// SuiteResult is one suite reported by a transcript.
type SuiteResult struct {
	Name           string        // Suite name as reported (or prefixed, once keyed by the runner)
	Counts         OutcomeCounts // Summary counts
	UnexpectedFail []string      // FAIL: lines, in order of appearance
	UnexpectedPass []string      // XPASS: lines, in order of appearance
}

// Parser defines the interface for transcript parsers.
type Parser interface {
	// Parse scans a transcript and yields each suite once it is complete.
	// The sequence reads r lazily and can be consumed only once.
	Parse(r io.Reader) iter.Seq[SuiteResult]
	// Name returns the name of the parser.
	Name() string
}

// ParseString parses an in-memory transcript and collects every suite.
func ParseString(p Parser, transcript string) []SuiteResult {
	return slices.Collect(p.Parse(strings.NewReader(transcript)))
}
