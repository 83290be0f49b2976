package sink

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/dejadiff/internal/config"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
)

// Factory creates a sink from its configuration section.
type Factory func(ctx context.Context, cfg *config.Config, deps Deps) (Sink, error)

// Registry maps sink keys to constructors.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in sinks.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("devnull", newDevNull)
	r.Register("console", newConsole)
	r.Register("notify", newNotify)
	r.Register("gitwiki", newGitWiki)
	r.Register("mediawiki", newMediaWiki)
	r.Register("sqlite", newSQLite)
	r.Register("metrics", newMetrics)
	return r
}

// Register adds or replaces a sink constructor.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[strings.ToLower(name)]
	return ok
}

// New creates the sink registered under name. Unknown names are
// configuration errors; constructor failures are environment errors.
func (r *Registry) New(ctx context.Context, name string, cfg *config.Config, deps Deps) (Sink, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, dderrors.Configf("unknown sink %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	s, err := f(ctx, cfg, deps)
	if err != nil {
		if dderrors.IsKind(err, dderrors.KindEnvironment) || dderrors.IsKind(err, dderrors.KindConfig) {
			return nil, err
		}
		return nil, dderrors.Environment(name, err)
	}
	return s, nil
}

// Names returns the registered keys in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newDevNull(context.Context, *config.Config, Deps) (Sink, error) {
	return DevNull{}, nil
}

func newConsole(_ context.Context, cfg *config.Config, deps Deps) (Sink, error) {
	return NewConsole(deps.Out, cfg.Console.ShowDetails()), nil
}

func newNotify(_ context.Context, cfg *config.Config, deps Deps) (Sink, error) {
	command := config.DefaultNotifyCommand
	if cfg.Notify != nil && cfg.Notify.Command != "" {
		command = cfg.Notify.Command
	}
	return NewNotify(command, logging.Subsystem(deps.Logger, "notify")), nil
}

func newGitWiki(ctx context.Context, cfg *config.Config, deps Deps) (Sink, error) {
	wc := cfg.GitWiki
	if wc == nil {
		wc = &config.GitWikiConfig{}
	}
	opts := GitWikiOptions{
		Dir:         config.ResolvePath(deps.Cwd, orDefault(wc.Dir, config.DefaultWikiDir)),
		Remote:      wc.Remote,
		Index:       orDefault(wc.Index, config.DefaultWikiIndex),
		Key:         orDefault(wc.Key, config.DefaultWikiKey),
		Description: orDefault(wc.Description, cfg.Description),
		Git:         wc.UseGit(),
		Push:        wc.ShouldPush(),
	}
	w, err := OpenGitWiki(ctx, opts, logging.Subsystem(deps.Logger, "gitwiki"))
	if err != nil {
		return nil, err
	}
	return w, nil
}

func newMediaWiki(ctx context.Context, cfg *config.Config, deps Deps) (Sink, error) {
	mc := cfg.MediaWiki
	if mc == nil || mc.URL == "" {
		return nil, dderrors.Configf("mediawiki.url: is required")
	}
	opts := MediaWikiOptions{
		URL:         mc.URL,
		Username:    mc.Username,
		Password:    mc.ResolvePassword(os.Getenv),
		Index:       orDefault(mc.Index, config.DefaultWikiIndex),
		Key:         orDefault(mc.Key, config.DefaultWikiKey),
		Description: orDefault(mc.Description, cfg.Description),
	}
	w, err := OpenMediaWiki(ctx, opts, logging.Subsystem(deps.Logger, "mediawiki"))
	if err != nil {
		return nil, err
	}
	return w, nil
}

func newSQLite(ctx context.Context, cfg *config.Config, deps Deps) (Sink, error) {
	path := config.DefaultSQLitePath
	if cfg.SQLite != nil && cfg.SQLite.Path != "" {
		path = cfg.SQLite.Path
	}
	db, err := OpenSQLite(ctx, config.ResolvePath(deps.Cwd, path), logging.Subsystem(deps.Logger, "sqlite"))
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newMetrics(_ context.Context, cfg *config.Config, deps Deps) (Sink, error) {
	path := config.DefaultMetricsFile
	if cfg.Metrics != nil && cfg.Metrics.Textfile != "" {
		path = cfg.Metrics.Textfile
	}
	return NewMetrics(config.ResolvePath(deps.Cwd, path), logging.Subsystem(deps.Logger, "metrics")), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
