// Package config provides loading and validation for dejadiff YAML configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration file.
type Config struct {
	Verbose     bool             `yaml:"verbose,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Driver      string           `yaml:"driver,omitempty"`
	Sinks       []string         `yaml:"sinks,omitempty"`
	Collectors  []string         `yaml:"collectors,omitempty"`
	DejaGnu     DejaGnuConfig    `yaml:"dejagnu"`
	GitWiki     *GitWikiConfig   `yaml:"gitwiki,omitempty"`
	MediaWiki   *MediaWikiConfig `yaml:"mediawiki,omitempty"`
	SQLite      *SQLiteConfig    `yaml:"sqlite,omitempty"`
	Notify      *NotifyConfig    `yaml:"notify,omitempty"`
	Metrics     *MetricsConfig   `yaml:"metrics,omitempty"`
	Console     *ConsoleConfig   `yaml:"console,omitempty"`
	GitHeads    *GitHeadsConfig  `yaml:"githeads,omitempty"`
	MiscEnv     *MiscEnvConfig   `yaml:"miscenv,omitempty"`
}

// DejaGnuConfig configures the harness invocations.
type DejaGnuConfig struct {
	Site    string       `yaml:"site,omitempty"`
	Timeout Duration     `yaml:"timeout,omitempty"`
	Tests   []TestConfig `yaml:"tests"`
}

// TestConfig defines one harness invocation.
type TestConfig struct {
	Prefix    string  `yaml:"prefix,omitempty"`
	Dir       string  `yaml:"dir,omitempty"`
	Command   Command `yaml:"command"`
	Site      string  `yaml:"site,omitempty"`
	StripANSI bool    `yaml:"strip_ansi,omitempty"`
}

// GitWikiConfig configures the git-backed wiki archive.
type GitWikiConfig struct {
	Dir         string `yaml:"dir,omitempty"`
	Remote      string `yaml:"remote,omitempty"`
	Index       string `yaml:"index,omitempty"`
	Key         string `yaml:"key,omitempty"`
	Description string `yaml:"description,omitempty"`
	Git         *bool  `yaml:"git,omitempty"`
	Push        *bool  `yaml:"push,omitempty"`
}

// UseGit reports whether the wiki directory is managed with git.
func (c *GitWikiConfig) UseGit() bool {
	return c.Git == nil || *c.Git
}

// ShouldPush reports whether commits are pushed after storing.
func (c *GitWikiConfig) ShouldPush() bool {
	return c.UseGit() && (c.Push == nil || *c.Push)
}

// MediaWikiConfig configures the MediaWiki server archive.
type MediaWikiConfig struct {
	URL         string `yaml:"url,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
	Index       string `yaml:"index,omitempty"`
	Key         string `yaml:"key,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ResolvePassword returns the configured password, reading it from the
// environment variable named by PasswordEnv when Password is empty.
func (c *MediaWikiConfig) ResolvePassword(getenv func(string) string) string {
	if c.Password != "" || c.PasswordEnv == "" {
		return c.Password
	}
	return getenv(c.PasswordEnv)
}

// SQLiteConfig configures the SQLite run archive.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig configures desktop notifications.
type NotifyConfig struct {
	Command string `yaml:"command,omitempty"`
}

// MetricsConfig configures the Prometheus textfile sink.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// ConsoleConfig configures the terminal summary.
type ConsoleConfig struct {
	Details *bool `yaml:"details,omitempty"`
}

// ShowDetails reports whether newly broken and fixed lists are printed.
func (c *ConsoleConfig) ShowDetails() bool {
	return c == nil || c.Details == nil || *c.Details
}

// GitHeadsConfig lists source trees whose HEAD is recorded.
type GitHeadsConfig struct {
	Dirs []string `yaml:"dirs,omitempty"`
}

// MiscEnvConfig names a file of extra key:value environment entries.
type MiscEnvConfig struct {
	File string `yaml:"file,omitempty"`
}

// Command is an argv. In YAML it is either a list or a single string split
// on whitespace.
type Command []string

// UnmarshalYAML accepts a scalar or a sequence.
func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*c = strings.Fields(s)
		return nil
	case yaml.SequenceNode:
		var argv []string
		if err := node.Decode(&argv); err != nil {
			return err
		}
		*c = argv
		return nil
	default:
		return fmt.Errorf("line %d: command must be a string or a list of strings", node.Line)
	}
}

// String joins the argv with spaces.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// Duration is a time.Duration written as a Go duration string, e.g. "4h".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
