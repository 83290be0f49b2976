package sink

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/mediawiki"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/render"
)

// MediaWikiOptions configures a MediaWiki sink.
type MediaWikiOptions struct {
	URL         string // Script path or api.php endpoint
	Username    string // Empty edits anonymously
	Password    string
	Index       string // Index page title
	Key         string // Run page title prefix
	Description string
}

// MediaWiki archives runs as pages on a MediaWiki server, with the same
// index and pages as GitWiki. Run pages are titled <key>-Test-<n>,
// <key>-Passes-<n> and <key>-Changed-<n>.
type MediaWiki struct {
	opts   MediaWikiOptions
	client *mediawiki.Client
	logger *slog.Logger
}

// OpenMediaWiki connects to the wiki and logs in when a username is set.
func OpenMediaWiki(ctx context.Context, opts MediaWikiOptions, logger *slog.Logger, clientOpts ...mediawiki.Option) (*MediaWiki, error) {
	logger = logging.OrDiscard(logger)
	client, err := mediawiki.New(opts.URL, append([]mediawiki.Option{mediawiki.WithLogger(logger)}, clientOpts...)...)
	if err != nil {
		return nil, dderrors.Configf("mediawiki.url: %v", err)
	}
	if opts.Username != "" {
		if err := client.Login(ctx, opts.Username, opts.Password); err != nil {
			return nil, dderrors.Environment("mediawiki", fmt.Errorf("log in as %s: %w", opts.Username, err))
		}
	}
	return &MediaWiki{opts: opts, client: client, logger: logger}, nil
}

// Name returns "mediawiki".
func (w *MediaWiki) Name() string { return "mediawiki" }

func (w *MediaWiki) pageTitle(kind string, n int) string {
	return w.opts.Key + "-" + kind + "-" + strconv.Itoa(n)
}

// LoadPrevious reads the Passes page of the last run. A missing index,
// marker or page means there is no previous run.
func (w *MediaWiki) LoadPrevious(ctx context.Context) (regression.PreviousRun, error) {
	index, ok, err := w.client.Page(ctx, w.opts.Index)
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("mediawiki", err)
	}
	if !ok {
		return regression.PreviousRun{}, nil
	}

	next, ok := parseNextKey(index)
	if !ok || next-1 < 1 {
		return regression.PreviousRun{}, nil
	}

	title := w.pageTitle("Passes", next-1)
	page, ok, err := w.client.Page(ctx, title)
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("mediawiki", err)
	}
	if !ok {
		w.logger.Debug("previous passes page missing", "page", title)
		return regression.PreviousRun{}, nil
	}

	prev, err := render.ParsePassesPage(strings.NewReader(page))
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("mediawiki", err)
	}
	return prev, nil
}

// Store edits the run pages and then the index. The index is written last
// so it never points at a run whose Passes page is missing.
func (w *MediaWiki) Store(ctx context.Context, pub Publication) error {
	index, ok, err := w.client.Page(ctx, w.opts.Index)
	if err != nil {
		return dderrors.Wrap(err, "read wiki index")
	}
	if !ok || index == "" {
		w.logger.Warn("no index found, creating new", "index", w.opts.Index)
		index = render.DefaultIndex(w.opts.Description)
	}

	run, err := newWikiRun(index, w.opts.Index, w.opts.Key, pub)
	if err != nil {
		return err
	}

	summary := wikiSummary(w.opts.Key, run.N)
	pages := []struct {
		title string
		text  string
	}{
		{w.pageTitle("Test", run.N), run.Test},
		{w.pageTitle("Passes", run.N), run.Passes},
		{w.pageTitle("Changed", run.N), run.Changed},
		{w.opts.Index, run.Index},
	}
	for _, p := range pages {
		if err := w.client.Edit(ctx, p.title, p.text, summary); err != nil {
			return dderrors.Wrap(err, "update wiki")
		}
	}
	w.logger.Info("updated wiki", "run", run.N, "url", w.opts.URL)
	return nil
}

// Close does nothing.
func (w *MediaWiki) Close() error { return nil }
