package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(data []byte) (*Config, []string, error) {
	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}

	warnings := detectUnknownFields(data)

	return cfg, warnings, nil
}

// detectUnknownFields compares the raw document with known struct fields.
// It runs after Config parsed successfully.
func detectUnknownFields(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	warnings := unknownKeys(raw, reflect.TypeOf(Config{}), "root level")

	sections := map[string]reflect.Type{
		"dejagnu":   reflect.TypeOf(DejaGnuConfig{}),
		"gitwiki":   reflect.TypeOf(GitWikiConfig{}),
		"mediawiki": reflect.TypeOf(MediaWikiConfig{}),
		"sqlite":    reflect.TypeOf(SQLiteConfig{}),
		"notify":    reflect.TypeOf(NotifyConfig{}),
		"metrics":   reflect.TypeOf(MetricsConfig{}),
		"console":   reflect.TypeOf(ConsoleConfig{}),
		"githeads":  reflect.TypeOf(GitHeadsConfig{}),
		"miscenv":   reflect.TypeOf(MiscEnvConfig{}),
	}
	for _, name := range sortedKeys(raw) {
		typ, ok := sections[name]
		if !ok {
			continue
		}
		section, ok := raw[name].(map[string]any)
		if !ok {
			continue
		}
		warnings = append(warnings, unknownKeys(section, typ, fmt.Sprintf("section %q", name))...)
	}

	if dg, ok := raw["dejagnu"].(map[string]any); ok {
		if tests, ok := dg["tests"].([]any); ok {
			testType := reflect.TypeOf(TestConfig{})
			for i, test := range tests {
				if fields, ok := test.(map[string]any); ok {
					warnings = append(warnings, unknownKeys(fields, testType, fmt.Sprintf("dejagnu.tests[%d]", i))...)
				}
			}
		}
	}

	return warnings
}

func unknownKeys(raw map[string]any, typ reflect.Type, where string) []string {
	known := getYAMLFields(typ)
	var warnings []string
	for _, key := range sortedKeys(raw) {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, where))
		}
	}
	return warnings
}

// getYAMLFields returns a map of known YAML field names for a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
