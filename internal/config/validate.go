package config

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/AndreyAkinshin/dejadiff/internal/errors"
)

// Registry keys: lowercase letters, digits, and hyphens.
var registryKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ExitCode marks validation failures as configuration errors.
func (e *ValidationError) ExitCode() int {
	return errors.ExitConfigError
}

// Validate checks a configuration for errors and returns warnings for
// non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateKeys("driver", []string{cfg.Driver}); err != nil {
		return nil, err
	}
	if err := validateKeys("sinks", cfg.Sinks); err != nil {
		return nil, err
	}
	if err := validateKeys("collectors", cfg.Collectors); err != nil {
		return nil, err
	}

	testWarnings, err := validateTests(cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, testWarnings...)

	if cfg.GitHeads != nil && len(cfg.GitHeads.Dirs) == 0 {
		warnings = append(warnings, "githeads: no dirs configured, nothing will be recorded")
	}
	if w := cfg.GitWiki; w != nil && w.UseGit() && w.Remote == "" {
		warnings = append(warnings, "gitwiki.remote: not set, the wiki directory must already be a git checkout")
	}

	mwWarnings, err := validateMediaWiki(cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, mwWarnings...)

	return warnings, nil
}

func validateKeys(field string, keys []string) error {
	seen := make(map[string]bool, len(keys))
	for i, key := range keys {
		if !registryKeyPattern.MatchString(key) {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("%q must match pattern ^[a-z][a-z0-9-]*$", key),
			}
		}
		if seen[key] {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("%q is listed more than once", key),
			}
		}
		seen[key] = true
	}
	return nil
}

func validateTests(cfg *Config) ([]string, error) {
	if len(cfg.DejaGnu.Tests) == 0 {
		return nil, &ValidationError{Field: "dejagnu.tests", Message: "at least one test is required"}
	}

	var warnings []string
	prefixes := make(map[string]int)
	for i, test := range cfg.DejaGnu.Tests {
		if len(test.Command) == 0 {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("dejagnu.tests[%d].command", i),
				Message: "test has no run command",
			}
		}
		prefix := test.Prefix
		if prefix == noneSentinel {
			prefix = ""
		}
		if first, ok := prefixes[prefix]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"dejagnu.tests[%d]: same prefix %q as tests[%d], suites with the same name will overwrite each other",
				i, prefix, first))
		} else {
			prefixes[prefix] = i
		}
	}
	if cfg.DejaGnu.Timeout < 0 {
		return nil, &ValidationError{Field: "dejagnu.timeout", Message: "must not be negative"}
	}
	return warnings, nil
}

func validateMediaWiki(cfg *Config) ([]string, error) {
	w := cfg.MediaWiki
	if w == nil || !slices.Contains(cfg.Sinks, "mediawiki") {
		return nil, nil
	}
	if w.URL == "" {
		return nil, &ValidationError{Field: "mediawiki.url", Message: "is required"}
	}
	if w.Username != "" && w.Password == "" && w.PasswordEnv == "" {
		return []string{"mediawiki.username: set without password or password_env, login will fail"}, nil
	}
	if w.Username == "" {
		return []string{"mediawiki.username: not set, pages will be edited anonymously"}, nil
	}
	return nil, nil
}
