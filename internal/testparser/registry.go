package testparser

import (
	"sort"
	"strings"
)

// Registry maps harness identifiers to their parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a new parser registry with all built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}

	dejagnuParser := &DejaGnuParser{}

	// runtest is DejaGnu's driver program; GCC and binutils testsuites
	// are both run through it.
	r.parsers["dejagnu"] = dejagnuParser
	r.parsers["runtest"] = dejagnuParser
	r.parsers["gcc"] = dejagnuParser

	return r
}

// GetParser returns a parser for the given harness identifier.
// Returns nil if no parser is found.
func (r *Registry) GetParser(harness string) Parser {
	return r.parsers[strings.ToLower(harness)]
}

// RegisterParser adds a custom parser for a harness.
func (r *Registry) RegisterParser(harness string, parser Parser) {
	r.parsers[strings.ToLower(harness)] = parser
}

// Names returns the registered harness identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
