package config

// Default configuration values.
const (
	DefaultDriver        = "dejagnu"
	DefaultDescription   = "Unnamed Test Suite"
	DefaultSink          = "console"
	DefaultCollector     = "stdenv"
	DefaultWikiDir       = "wiki"
	DefaultWikiIndex     = "Home"
	DefaultWikiKey       = "tests"
	DefaultSQLitePath    = "dejadiff.db"
	DefaultNotifyCommand = "notify-send"
	DefaultMetricsFile   = "dejadiff.prom"
	DefaultMiscEnvFile   = "env.txt"
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyCoreDefaults(cfg)
	applyTestDefaults(cfg)
	applySinkDefaults(cfg)
	applyCollectorDefaults(cfg)
}

func applyCoreDefaults(cfg *Config) {
	if cfg.Driver == "" {
		cfg.Driver = DefaultDriver
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = []string{DefaultSink}
	}
	if cfg.Collectors == nil {
		cfg.Collectors = []string{DefaultCollector}
	}
}

func applyTestDefaults(cfg *Config) {
	for i, test := range cfg.DejaGnu.Tests {
		if test.Prefix == noneSentinel {
			test.Prefix = ""
		}
		// A test without its own site uses the global one.
		if test.Site == "" {
			test.Site = cfg.DejaGnu.Site
		}
		cfg.DejaGnu.Tests[i] = test
	}
}

func applySinkDefaults(cfg *Config) {
	for _, name := range cfg.Sinks {
		switch name {
		case "gitwiki":
			if cfg.GitWiki == nil {
				cfg.GitWiki = &GitWikiConfig{}
			}
		case "mediawiki":
			if cfg.MediaWiki == nil {
				cfg.MediaWiki = &MediaWikiConfig{}
			}
		case "sqlite":
			if cfg.SQLite == nil {
				cfg.SQLite = &SQLiteConfig{}
			}
		case "notify":
			if cfg.Notify == nil {
				cfg.Notify = &NotifyConfig{}
			}
		case "metrics":
			if cfg.Metrics == nil {
				cfg.Metrics = &MetricsConfig{}
			}
		}
	}

	if w := cfg.GitWiki; w != nil {
		if w.Dir == "" {
			w.Dir = DefaultWikiDir
		}
		if w.Index == "" {
			w.Index = DefaultWikiIndex
		}
		if w.Key == "" {
			w.Key = DefaultWikiKey
		}
		if w.Description == "" {
			w.Description = cfg.Description
		}
	}
	if w := cfg.MediaWiki; w != nil {
		if w.Index == "" {
			w.Index = DefaultWikiIndex
		}
		if w.Key == "" {
			w.Key = DefaultWikiKey
		}
		if w.Description == "" {
			w.Description = cfg.Description
		}
	}
	if cfg.SQLite != nil && cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Notify != nil && cfg.Notify.Command == "" {
		cfg.Notify.Command = DefaultNotifyCommand
	}
	if cfg.Metrics != nil && cfg.Metrics.Textfile == "" {
		cfg.Metrics.Textfile = DefaultMetricsFile
	}
}

func applyCollectorDefaults(cfg *Config) {
	for _, name := range cfg.Collectors {
		switch name {
		case "githeads":
			if cfg.GitHeads == nil {
				cfg.GitHeads = &GitHeadsConfig{}
			}
		case "miscenv":
			if cfg.MiscEnv == nil {
				cfg.MiscEnv = &MiscEnvConfig{}
			}
		}
	}
	if cfg.MiscEnv != nil && cfg.MiscEnv.File == "" {
		cfg.MiscEnv.File = DefaultMiscEnvFile
	}
}
