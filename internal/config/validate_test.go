package config

import (
	stderrors "errors"
	"strings"
	"testing"
)

func asValidationError(err error, target **ValidationError) bool {
	return stderrors.As(err, target)
}

func validConfig() *Config {
	cfg := &Config{
		DejaGnu: DejaGnuConfig{
			Tests: []TestConfig{{Command: Command{"make", "check"}}},
		},
	}
	applyDefaults(cfg)
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()
	warnings, err := Validate(validConfig())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Validate() warnings = %v, want none", warnings)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "no tests",
			mutate: func(c *Config) { c.DejaGnu.Tests = nil },
			field:  "dejagnu.tests",
		},
		{
			name: "missing command",
			mutate: func(c *Config) {
				c.DejaGnu.Tests = append(c.DejaGnu.Tests, TestConfig{Dir: "b"})
			},
			field: "dejagnu.tests[1].command",
		},
		{
			name:   "bad sink key",
			mutate: func(c *Config) { c.Sinks = []string{"console", "Git Wiki"} },
			field:  "sinks[1]",
		},
		{
			name:   "duplicate collector",
			mutate: func(c *Config) { c.Collectors = []string{"stdenv", "stdenv"} },
			field:  "collectors[1]",
		},
		{
			name:   "bad driver key",
			mutate: func(c *Config) { c.Driver = "9lives" },
			field:  "driver[0]",
		},
		{
			name: "mediawiki without url",
			mutate: func(c *Config) {
				c.Sinks = []string{"mediawiki"}
				c.MediaWiki = &MediaWikiConfig{Username: "bot"}
			},
			field: "mediawiki.url",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.DejaGnu.Timeout = -1 },
			field:  "dejagnu.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			_, err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			var verr *ValidationError
			if !asValidationError(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestValidate_SharedPrefixWarns(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.DejaGnu.Tests = append(cfg.DejaGnu.Tests, TestConfig{Command: Command{"make", "check-ld"}})

	warnings, err := Validate(cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "overwrite") {
		t.Errorf("warnings = %v, want one overwrite warning", warnings)
	}
}

func TestValidate_NonePrefixCollidesWithEmpty(t *testing.T) {
	t.Parallel()
	// Validate may run on a config whose prefixes still hold the sentinel.
	cfg := &Config{
		Driver: "dejagnu",
		DejaGnu: DejaGnuConfig{Tests: []TestConfig{
			{Prefix: "", Command: Command{"make", "check-gcc"}},
			{Prefix: "None", Command: Command{"make", "check-g++"}},
		}},
	}

	warnings, err := Validate(cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "tests[1]: same prefix \"\" as tests[0]") {
		t.Errorf("warnings = %v, want tests[1] to collide with tests[0]", warnings)
	}
}

func TestValidate_MediaWikiWarnings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		mw   MediaWikiConfig
		want string
	}{
		{"anonymous", MediaWikiConfig{URL: "https://wiki.example.org/w"}, "anonymously"},
		{"no password", MediaWikiConfig{URL: "https://wiki.example.org/w", Username: "bot"}, "login will fail"},
		{"password from env", MediaWikiConfig{URL: "https://wiki.example.org/w", Username: "bot", PasswordEnv: "WIKI_PASSWORD"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			cfg.Sinks = []string{"mediawiki"}
			mw := tt.mw
			cfg.MediaWiki = &mw

			warnings, err := Validate(cfg)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if tt.want == "" {
				if len(warnings) != 0 {
					t.Errorf("warnings = %v, want none", warnings)
				}
				return
			}
			if len(warnings) != 1 || !strings.Contains(warnings[0], tt.want) {
				t.Errorf("warnings = %v, want one containing %q", warnings, tt.want)
			}
		})
	}
}

func TestValidate_MediaWikiSectionIgnoredWhenUnused(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.MediaWiki = &MediaWikiConfig{}

	if _, err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil when mediawiki is not a sink", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()
	err := &ValidationError{Field: "dejagnu.tests[0].command", Message: "test has no run command"}
	if got := err.Error(); got != "dejagnu.tests[0].command: test has no run command" {
		t.Errorf("Error() = %q", got)
	}
	if err.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", err.ExitCode())
	}
}
