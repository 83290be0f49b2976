// Package collector gathers environment metadata recorded with each run.
package collector

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/dejadiff/internal/config"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
)

// Collector adds entries to the environment map of a run.
type Collector interface {
	// Name returns the registry key of the collector.
	Name() string
	// Collect adds or overwrites entries in env.
	Collect(ctx context.Context, env map[string]string) error
	// Close releases resources held by the collector.
	Close() error
}

// Deps are the shared collaborators handed to every collector.
type Deps struct {
	Logger *slog.Logger
	Cwd    string // Base for relative paths in configuration
}

// Factory creates a collector from its configuration section.
type Factory func(cfg *config.Config, deps Deps) (Collector, error)

// Registry maps collector keys to constructors.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in collectors.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("stdenv", func(_ *config.Config, deps Deps) (Collector, error) {
		return NewStdEnv(), nil
	})
	r.Register("githeads", func(cfg *config.Config, deps Deps) (Collector, error) {
		var dirs []string
		if cfg.GitHeads != nil {
			for _, d := range cfg.GitHeads.Dirs {
				dirs = append(dirs, config.ResolvePath(deps.Cwd, d))
			}
		}
		return NewGitHeads(dirs, logging.Subsystem(deps.Logger, "githeads")), nil
	})
	r.Register("miscenv", func(cfg *config.Config, deps Deps) (Collector, error) {
		file := config.DefaultMiscEnvFile
		if cfg.MiscEnv != nil && cfg.MiscEnv.File != "" {
			file = cfg.MiscEnv.File
		}
		return NewMiscEnv(config.ResolvePath(deps.Cwd, file)), nil
	})
	return r
}

// Register adds or replaces a collector constructor.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[strings.ToLower(name)]
	return ok
}

// New creates the collector registered under name.
func (r *Registry) New(name string, cfg *config.Config, deps Deps) (Collector, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, dderrors.Configf("unknown collector %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	c, err := f(cfg, deps)
	if err != nil {
		return nil, dderrors.Environment(name, err)
	}
	return c, nil
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
