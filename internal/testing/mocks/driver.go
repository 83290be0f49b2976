// Package mocks provides shared test doubles for dejadiff packages.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/AndreyAkinshin/dejadiff/internal/driver"
)

// Driver implements driver.Driver for testing. Transcripts and failures are
// keyed by TestSpec.Directory.
// Use NewDriver() to create instances with a fluent builder API.
type Driver struct {
	name        string
	transcripts map[string]string
	failures    map[string]error

	// RunFunc replaces the canned lookup when set.
	RunFunc func(ctx context.Context, spec driver.TestSpec) (string, error)

	// Run tracking (thread-safe)
	runCount int32
	mu       sync.Mutex
	calls    []string
}

// NewDriver creates a new mock driver with the given name.
func NewDriver(name string) *Driver {
	return &Driver{
		name:        name,
		transcripts: make(map[string]string),
		failures:    make(map[string]error),
	}
}

// WithTranscript sets the transcript returned for dir.
func (m *Driver) WithTranscript(dir, transcript string) *Driver {
	m.transcripts[dir] = transcript
	return m
}

// WithFailure makes runs in dir fail with a launch error caused by err.
func (m *Driver) WithFailure(dir string, err error) *Driver {
	m.failures[dir] = err
	return m
}

// WithRunFunc sets the function called by Run.
func (m *Driver) WithRunFunc(fn func(ctx context.Context, spec driver.TestSpec) (string, error)) *Driver {
	m.RunFunc = fn
	return m
}

// Name returns the driver name.
func (m *Driver) Name() string { return m.name }

// Run records the call and returns the canned result for spec.Directory.
// Unknown directories yield an empty transcript.
func (m *Driver) Run(ctx context.Context, spec driver.TestSpec) (string, error) {
	atomic.AddInt32(&m.runCount, 1)
	m.mu.Lock()
	m.calls = append(m.calls, spec.Directory)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, spec)
	}
	if err := m.failures[spec.Directory]; err != nil {
		return "", &driver.LaunchError{Spec: spec, Cause: err}
	}
	return m.transcripts[spec.Directory], nil
}

// Test inspection methods

// RunCount returns the number of times Run was called.
func (m *Driver) RunCount() int32 {
	return atomic.LoadInt32(&m.runCount)
}

// Calls returns the directories passed to Run, in call order.
func (m *Driver) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.calls))
	copy(result, m.calls)
	return result
}

// Reset clears run tracking state.
func (m *Driver) Reset() {
	atomic.StoreInt32(&m.runCount, 0)
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}
