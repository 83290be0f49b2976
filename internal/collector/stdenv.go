package collector

import (
	"context"
	"time"
)

// Environment keys set by StdEnv.
const (
	KeyTestDate   = "Test Date"
	KeyHostName   = "Host Name"
	KeyHostKernel = "Host Kernel"
)

// TestDateLayout formats KeyTestDate, e.g. "Oct 16, 2026 09:30".
const TestDateLayout = "Jan 02, 2006 15:04"

// StdEnv records the date of the run and the host it ran on.
type StdEnv struct {
	now   func() time.Time
	uname func() (host, kernel string, err error)
}

// NewStdEnv creates the standard environment collector.
func NewStdEnv() *StdEnv {
	return &StdEnv{now: time.Now, uname: hostInfo}
}

// Name returns the collector name.
func (s *StdEnv) Name() string { return "stdenv" }

// Collect sets the test date, host name and kernel release.
func (s *StdEnv) Collect(_ context.Context, env map[string]string) error {
	env[KeyTestDate] = s.now().Format(TestDateLayout)

	host, kernel, err := s.uname()
	if err != nil {
		return err
	}
	env[KeyHostName] = host
	env[KeyHostKernel] = kernel
	return nil
}

// Close does nothing.
func (s *StdEnv) Close() error { return nil }
