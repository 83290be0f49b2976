package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/render"
	"github.com/AndreyAkinshin/dejadiff/internal/vcs"
)

// GitWikiOptions configures a GitWiki sink.
type GitWikiOptions struct {
	Dir         string // Absolute path of the wiki checkout
	Remote      string // Cloned into Dir when Dir does not exist
	Index       string // Index page name without extension
	Key         string // Run page prefix and subdirectory
	Description string
	Git         bool // Manage Dir with git
	Push        bool // Push after committing
}

// GitWiki archives runs as pages in a git-backed wiki, such as a GitHub
// project wiki.
//
// Layout inside the checkout:
//
//	<index>.mediawiki                  summary table, one row per run
//	<key>/<key>-Test-<n>.mediawiki     environment and results of run n
//	<key>/<key>-Passes-<n>.md          unexpected failures and passes of run n
//	<key>/<key>-Changed-<n>.md         newly broken and fixed tests of run n
//
// The index carries the next run number in a NEXTKEY marker; the previous
// run is read back from the Passes page of run NEXTKEY-1.
type GitWiki struct {
	opts   GitWikiOptions
	git    *vcs.Git
	logger *slog.Logger
}

// OpenGitWiki prepares the wiki checkout. With git enabled, a missing
// checkout is cloned from the remote and an existing one is pulled.
func OpenGitWiki(ctx context.Context, opts GitWikiOptions, logger *slog.Logger) (*GitWiki, error) {
	logger = logging.OrDiscard(logger)
	w := &GitWiki{opts: opts, git: vcs.NewGit(opts.Dir, logger), logger: logger}

	_, statErr := os.Stat(opts.Dir)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return nil, dderrors.Environment("gitwiki", statErr)
	}

	switch {
	case !opts.Git:
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, dderrors.Environment("gitwiki", err)
		}
	case !exists && opts.Remote != "":
		logger.Info("wiki directory does not exist, cloning", "remote", opts.Remote, "dir", opts.Dir)
		if err := vcs.Clone(ctx, opts.Remote, opts.Dir, logger); err != nil {
			return nil, dderrors.Environment("gitwiki", fmt.Errorf("unable to clone wiki: %w", err))
		}
	case !exists:
		return nil, dderrors.Environment("gitwiki", fmt.Errorf("wiki directory %s does not exist and no remote is configured", opts.Dir))
	case opts.Remote != "":
		if _, err := w.git.Run(ctx, "pull"); err != nil {
			return nil, dderrors.Environment("gitwiki", fmt.Errorf("unable to update wiki: %w", err))
		}
	}

	return w, nil
}

// Name returns the sink name.
func (w *GitWiki) Name() string { return "gitwiki" }

func (w *GitWiki) indexPath() string {
	return filepath.Join(w.opts.Dir, w.indexFile())
}

func (w *GitWiki) indexFile() string {
	return w.opts.Index + ".mediawiki"
}

// pageFile returns the path of a run page relative to the checkout.
func (w *GitWiki) pageFile(kind string, n int, ext string) string {
	return filepath.Join(w.opts.Key, fmt.Sprintf("%s-%s-%d.%s", w.opts.Key, kind, n, ext))
}

// LoadPrevious reads the Passes page of the last run. A missing index,
// marker or page means there is no previous run.
func (w *GitWiki) LoadPrevious(context.Context) (regression.PreviousRun, error) {
	index, err := os.ReadFile(w.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return regression.PreviousRun{}, nil
	}
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("gitwiki", err)
	}

	next, ok := parseNextKey(string(index))
	if !ok || next-1 < 1 {
		return regression.PreviousRun{}, nil
	}

	page := filepath.Join(w.opts.Dir, w.pageFile("Passes", next-1, "md"))
	f, err := os.Open(page)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("previous passes page missing", "page", page)
		return regression.PreviousRun{}, nil
	}
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("gitwiki", err)
	}
	defer f.Close()

	prev, err := render.ParsePassesPage(f)
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("gitwiki", err)
	}
	return prev, nil
}

// Store writes the index row and the pages for the new run, then commits
// and optionally pushes them.
func (w *GitWiki) Store(ctx context.Context, pub Publication) error {
	index, err := w.readIndex()
	if err != nil {
		return err
	}

	run, err := newWikiRun(index, w.indexPath(), w.opts.Key, pub)
	if err != nil {
		return err
	}
	n := run.N

	pages := []struct {
		rel     string
		content string
	}{
		{w.indexFile(), run.Index},
		{w.pageFile("Test", n, "mediawiki"), run.Test},
		{w.pageFile("Passes", n, "md"), run.Passes},
		{w.pageFile("Changed", n, "md"), run.Changed},
	}

	if err := os.MkdirAll(filepath.Join(w.opts.Dir, w.opts.Key), 0o755); err != nil {
		return dderrors.Wrap(err, "create wiki key directory")
	}
	files := make([]string, 0, len(pages))
	for _, p := range pages {
		if err := os.WriteFile(filepath.Join(w.opts.Dir, p.rel), []byte(p.content), 0o644); err != nil {
			return dderrors.Wrap(err, "write wiki page")
		}
		files = append(files, filepath.ToSlash(p.rel))
	}
	w.logger.Info("updated wiki", "run", n, "dir", w.opts.Dir)

	if !w.opts.Git {
		return nil
	}
	return w.commit(ctx, n, files)
}

func (w *GitWiki) readIndex() (string, error) {
	data, err := os.ReadFile(w.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("no index found, creating new", "index", w.indexPath())
		return render.DefaultIndex(w.opts.Description), nil
	}
	if err != nil {
		return "", dderrors.Wrap(err, "read wiki index")
	}
	return string(data), nil
}

func (w *GitWiki) commit(ctx context.Context, n int, files []string) error {
	if _, err := w.git.Run(ctx, append([]string{"add", "--"}, files...)...); err != nil {
		return dderrors.Wrap(err, "stage wiki pages")
	}
	if _, err := w.git.Run(ctx, "commit", "-m", wikiSummary(w.opts.Key, n)); err != nil {
		if vcs.IsNothingToCommit(err) {
			w.logger.Debug("wiki unchanged, nothing to commit")
			return nil
		}
		return dderrors.Wrap(err, "commit wiki pages")
	}
	if !w.opts.Push {
		return nil
	}
	if _, err := w.git.Run(ctx, "push"); err != nil {
		return dderrors.Wrap(err, "push wiki")
	}
	return nil
}

// Close does nothing.
func (w *GitWiki) Close() error { return nil }
