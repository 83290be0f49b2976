// Package results holds the per-run aggregate handed from the runner to sinks.
package results

import (
	"slices"
	"sort"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

// Entry is one suite in the aggregate along with its diff.
type Entry struct {
	Suite testparser.SuiteResult
	Diff  regression.DiffSet
	// HasPrevious is false when the previous run had no entry for this key.
	HasPrevious bool
}

// Aggregate maps suite keys to their entries.
// Keys are unique; a later Put for the same key replaces the earlier entry.
type Aggregate struct {
	entries map[string]Entry
	order   []string
}

// New creates an empty aggregate.
func New() *Aggregate {
	return &Aggregate{entries: make(map[string]Entry)}
}

// Put stores an entry under key and reports whether it replaced an existing one.
// A replaced key keeps its original position in Keys.
func (a *Aggregate) Put(key string, e Entry) bool {
	_, replaced := a.entries[key]
	if !replaced {
		a.order = append(a.order, key)
	}
	a.entries[key] = e
	return replaced
}

// Get returns the entry for key.
func (a *Aggregate) Get(key string) (Entry, bool) {
	if a == nil {
		return Entry{}, false
	}
	e, ok := a.entries[key]
	return e, ok
}

// Keys returns keys in first-insertion order.
func (a *Aggregate) Keys() []string {
	if a == nil {
		return nil
	}
	return slices.Clone(a.order)
}

// SortedKeys returns keys in lexical order.
func (a *Aggregate) SortedKeys() []string {
	keys := a.Keys()
	sort.Strings(keys)
	return keys
}

// Len returns the number of suites.
func (a *Aggregate) Len() int {
	if a == nil {
		return 0
	}
	return len(a.order)
}

// Suites returns the suite results keyed by suite key.
func (a *Aggregate) Suites() map[string]testparser.SuiteResult {
	out := make(map[string]testparser.SuiteResult, a.Len())
	for _, k := range a.Keys() {
		out[k] = a.entries[k].Suite
	}
	return out
}

// Totals sums outcome counts across all suites.
func (a *Aggregate) Totals() testparser.OutcomeCounts {
	var total testparser.OutcomeCounts
	for _, k := range a.Keys() {
		c := a.entries[k].Suite.Counts
		for i := range total {
			total[i] += c[i]
		}
	}
	return total
}

// Regressed reports whether any suite has newly broken tests.
func (a *Aggregate) Regressed() bool {
	for _, k := range a.Keys() {
		if len(a.entries[k].Diff.NewlyBroken) > 0 {
			return true
		}
	}
	return false
}
