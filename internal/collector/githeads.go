package collector

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/vcs"
)

// GitHeadsPrefix starts every key set by GitHeads.
const GitHeadsPrefix = "git_"

// dirtyMarker is appended to the commit of a tree with local changes.
const dirtyMarker = "*"

// GitHeads records the HEAD commit of source trees, e.g.
// "git_gcc" = "4f2c9e1...*" for a modified gcc checkout.
type GitHeads struct {
	dirs   []string
	logger *slog.Logger
}

// NewGitHeads creates a collector for the given absolute directories.
func NewGitHeads(dirs []string, logger *slog.Logger) *GitHeads {
	return &GitHeads{dirs: dirs, logger: logging.OrDiscard(logger)}
}

// Name returns the collector name.
func (g *GitHeads) Name() string { return "githeads" }

// Collect records each directory under git_<basename>. Directories that
// are not git checkouts are skipped with a warning.
func (g *GitHeads) Collect(ctx context.Context, env map[string]string) error {
	for _, dir := range g.dirs {
		repo := vcs.NewGit(dir, g.logger)

		head, err := repo.Head(ctx)
		if err != nil {
			g.logger.Warn("unable to read git head, skipping", "dir", dir, "error", err)
			continue
		}
		dirty, err := repo.Dirty(ctx)
		if err != nil {
			g.logger.Warn("unable to read git status, skipping", "dir", dir, "error", err)
			continue
		}
		if dirty {
			head += dirtyMarker
		}
		env[GitHeadsPrefix+filepath.Base(dir)] = head
	}
	return nil
}

// Close does nothing.
func (g *GitHeads) Close() error { return nil }
