// Package regression computes which tests newly broke or were newly fixed
// between two runs of the same suite.
package regression

import (
	"slices"

	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

// PreviousSuite holds the named results archived for one suite.
type PreviousSuite struct {
	UnexpectedFail []string
	UnexpectedPass []string
}

// PreviousRun maps suite keys to the results archived by the last run.
// A nil or empty PreviousRun means there is no previous run.
type PreviousRun map[string]PreviousSuite

// Lookup returns the archived entry for key, or nil if there is none.
func (p PreviousRun) Lookup(key string) *PreviousSuite {
	prev, ok := p[key]
	if !ok {
		return nil
	}
	return &prev
}

// FromSuites builds a PreviousRun from finished suite results keyed by name.
func FromSuites(suites map[string]testparser.SuiteResult) PreviousRun {
	prev := make(PreviousRun, len(suites))
	for key, s := range suites {
		prev[key] = PreviousSuite{
			UnexpectedFail: slices.Clone(s.UnexpectedFail),
			UnexpectedPass: slices.Clone(s.UnexpectedPass),
		}
	}
	return prev
}

// DiffSet lists the tests whose unexpected-outcome membership changed.
type DiffSet struct {
	NewlyBroken []string
	NewlyFixed  []string
}

// Empty reports whether nothing changed.
func (d DiffSet) Empty() bool {
	return len(d.NewlyBroken) == 0 && len(d.NewlyFixed) == 0
}

// Diff compares a finished suite against its previous entry.
//
// Without a previous entry every unexpected failure and unexpected pass is
// newly broken. Otherwise newly broken holds current names missing from the
// previous lists and newly fixed holds previous names missing from the
// current lists; failures come before unexpected passes in both.
// Membership is a plain "appears anywhere in the other list" test, so
// duplicates are neither merged nor counted.
func Diff(current testparser.SuiteResult, previous *PreviousSuite) DiffSet {
	if previous == nil {
		broken := make([]string, 0, len(current.UnexpectedFail)+len(current.UnexpectedPass))
		broken = append(broken, current.UnexpectedFail...)
		broken = append(broken, current.UnexpectedPass...)
		return DiffSet{NewlyBroken: broken, NewlyFixed: []string{}}
	}

	broken := minus(current.UnexpectedFail, previous.UnexpectedFail)
	broken = append(broken, minus(current.UnexpectedPass, previous.UnexpectedPass)...)

	fixed := minus(previous.UnexpectedFail, current.UnexpectedFail)
	fixed = append(fixed, minus(previous.UnexpectedPass, current.UnexpectedPass)...)

	return DiffSet{NewlyBroken: broken, NewlyFixed: fixed}
}

// minus returns the elements of a, in order, that do not appear in b.
func minus(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, name := range b {
		in[name] = struct{}{}
	}
	out := []string{}
	for _, name := range a {
		if _, ok := in[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
