// Package integration exercises full dejadiff runs against real harness
// processes and archives.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/AndreyAkinshin/dejadiff/internal/config"
	"github.com/AndreyAkinshin/dejadiff/internal/runner"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

func transcript(name string) string {
	return filepath.Join(fixturesDir(), "transcripts", name)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// workspace is a scratch directory holding a config whose single test
// replays a saved transcript with cat.
type workspace struct {
	dir string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	return &workspace{dir: t.TempDir()}
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

// config returns a config that replays transcriptPath into the given sinks.
func (w *workspace) config(t *testing.T, transcriptPath string, extra string) *config.Config {
	t.Helper()
	data := fmt.Sprintf(`description: integration
sinks: [gitwiki, sqlite, metrics]
collectors: []
dejagnu:
  tests:
    - dir: %[1]s
      command: [cat, %[2]s]
gitwiki:
  dir: %[1]s/wiki
  key: gcc
  git: false
sqlite:
  path: %[1]s/archive.db
metrics:
  textfile: %[1]s/dejadiff.prom
%[3]s`, w.dir, transcriptPath, extra)

	cfg, warnings, err := config.LoadBytes([]byte(data))
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("LoadBytes() warnings = %v", warnings)
	}
	return cfg
}

// execute runs one session and closes it.
func (w *workspace) execute(t *testing.T, cfg *config.Config, runID string) (*runner.Report, error) {
	t.Helper()
	ctx := context.Background()
	session, err := runner.NewSession(ctx, cfg, runner.SessionOptions{
		Cwd:   w.dir,
		RunID: runID,
		Now:   func() time.Time { return time.Date(2026, 10, 13, 2, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer func() {
		if failed := session.Close(); len(failed) != 0 {
			t.Errorf("Close() failures = %v", failed)
		}
	}()
	return session.Execute(ctx)
}
