package collector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// MiscEnv copies custom entries from a file of "key:value" lines. Each line
// is split on its first colon, so values may contain colons.
type MiscEnv struct {
	path string
}

// NewMiscEnv creates a collector reading path.
func NewMiscEnv(path string) *MiscEnv {
	return &MiscEnv{path: path}
}

// Name returns the collector name.
func (m *MiscEnv) Name() string { return "miscenv" }

// Collect adds every entry of the file. Blank lines are skipped; a line
// without a colon is an error and nothing from the file is added.
func (m *MiscEnv) Collect(_ context.Context, env map[string]string) error {
	f, err := os.Open(m.path)
	if err != nil {
		return fmt.Errorf("couldn't set custom environment: %w", err)
	}
	defer f.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		key, value, ok := strings.Cut(text, ":")
		if !ok {
			return fmt.Errorf("%s:%d: expected key:value", m.path, line)
		}
		entries[key] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", m.path, err)
	}

	for k, v := range entries {
		env[k] = v
	}
	return nil
}

// Close does nothing.
func (m *MiscEnv) Close() error { return nil }
