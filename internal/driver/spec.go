// Package driver runs harness invocations and captures their transcripts.
package driver

import (
	"fmt"
	"strings"
	"time"
)

// TestSpec describes one harness invocation. It is built once from
// configuration and never changed during a run.
type TestSpec struct {
	Prefix    string        // Prepended to every suite name the invocation reports
	Directory string        // Absolute working directory of the child process
	Command   []string      // argv; Command[0] is looked up in PATH
	Site      string        // Value for DEJAGNU; empty leaves it unset
	Timeout   time.Duration // Zero means no limit
	StripANSI bool          // Remove ANSI escapes from the transcript
}

// HasSite reports whether the invocation sets the site variable.
func (s TestSpec) HasSite() bool {
	return s.Site != ""
}

// Key returns the aggregate key for a suite reported by this invocation.
func (s TestSpec) Key(suite string) string {
	return s.Prefix + suite
}

// Describe formats the spec for diagnostics, e.g. "[or1k-] /build/gcc: make check-gcc".
func (s TestSpec) Describe() string {
	cmd := strings.Join(s.Command, " ")
	if s.Prefix == "" {
		return fmt.Sprintf("%s: %s", s.Directory, cmd)
	}
	return fmt.Sprintf("[%s] %s: %s", s.Prefix, s.Directory, cmd)
}
