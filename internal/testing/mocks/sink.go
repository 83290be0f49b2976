package mocks

import (
	"context"
	"sync"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/sink"
)

// Sink implements sink.Sink for testing by keeping publications in memory.
type Sink struct {
	name     string
	previous regression.PreviousRun
	loadErr  error
	storeErr error
	closeErr error

	mu     sync.Mutex
	stored []sink.Publication
	closed bool
}

// NewSink creates a new mock sink with the given name and no archive.
func NewSink(name string) *Sink {
	return &Sink{name: name}
}

// WithPrevious sets the run returned by LoadPrevious.
func (m *Sink) WithPrevious(prev regression.PreviousRun) *Sink {
	m.previous = prev
	return m
}

// WithLoadError makes LoadPrevious fail.
func (m *Sink) WithLoadError(err error) *Sink {
	m.loadErr = err
	return m
}

// WithStoreError makes Store fail without recording the publication.
func (m *Sink) WithStoreError(err error) *Sink {
	m.storeErr = err
	return m
}

// WithCloseError makes Close fail.
func (m *Sink) WithCloseError(err error) *Sink {
	m.closeErr = err
	return m
}

// Name returns the sink name.
func (m *Sink) Name() string { return m.name }

// LoadPrevious returns the configured previous run.
func (m *Sink) LoadPrevious(context.Context) (regression.PreviousRun, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.previous == nil {
		return regression.PreviousRun{}, nil
	}
	return m.previous, nil
}

// Store records pub.
func (m *Sink) Store(_ context.Context, pub sink.Publication) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	m.stored = append(m.stored, pub)
	m.mu.Unlock()
	return nil
}

// Close marks the sink closed.
func (m *Sink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.closeErr
}

// Test inspection methods

// Stored returns every publication recorded by Store.
func (m *Sink) Stored() []sink.Publication {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]sink.Publication, len(m.stored))
	copy(result, m.stored)
	return result
}

// Closed reports whether Close was called.
func (m *Sink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
