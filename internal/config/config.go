// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/preparer"
	"github.com/specgate/specgate/registry"
)

// Tag rewrite modes accepted in settings.tag_rewrite.
const (
	// TagRewriteCollapse collapses a multi-tag operation to one grouped
	// tag. This is the default.
	TagRewriteCollapse = "collapse"

	// TagRewriteInPlace rewrites each operation tag individually.
	TagRewriteInPlace = "in-place"
)

// Config is the root configuration structure.
type Config struct {
	Settings Settings `yaml:"settings"`
	Sources  []Source `yaml:"sources"`
}

// Settings carries the merged document metadata and run tuning.
type Settings struct {
	// Title, Description and Version stamp the merged document's info
	// section. Empty values use the merger defaults.
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`

	// Grouping namespaces tags per source. Defaults to true when
	// omitted.
	Grouping *bool `yaml:"grouping,omitempty"`

	// TagRewrite selects the multi-tag rewrite mode when grouping is
	// on: "collapse" (default) or "in-place".
	TagRewrite string `yaml:"tag_rewrite,omitempty"`

	// Proxy stamps proxy-path origins when a local reverse proxy is
	// reachable.
	Proxy bool `yaml:"proxy,omitempty"`

	// ProbeTimeout, FetchTimeout and RefreshTTL are duration strings
	// ("3s", "1m30s"). Empty uses package defaults.
	ProbeTimeout string `yaml:"probe_timeout,omitempty"`
	FetchTimeout string `yaml:"fetch_timeout,omitempty"`
	RefreshTTL   string `yaml:"refresh_ttl,omitempty"`
}

// Source configures one upstream service.
type Source struct {
	// Name identifies the source; it seeds collision suffixes and the
	// proxy path segment. Sources without a name get a generated one.
	Name string `yaml:"name,omitempty"`

	// URL is the upstream base URL stamped into operations.
	URL string `yaml:"url,omitempty"`

	// Schema is where the source's OpenAPI document is fetched from.
	Schema string `yaml:"schema"`

	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// Load reads and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates configuration from YAML bytes.
func LoadBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Settings.TagRewrite {
	case "", TagRewriteCollapse, TagRewriteInPlace:
	default:
		return fmt.Errorf("settings.tag_rewrite: unknown mode %q", c.Settings.TagRewrite)
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"settings.probe_timeout", c.Settings.ProbeTimeout},
		{"settings.fetch_timeout", c.Settings.FetchTimeout},
		{"settings.refresh_ttl", c.Settings.RefreshTTL},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s: invalid duration %q", field.name, field.value)
		}
	}

	names := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		prefix := fmt.Sprintf("sources[%d]", i)
		if src.Name != "" {
			if names[src.Name] {
				return fmt.Errorf("%s: duplicate source name %q", prefix, src.Name)
			}
			names[src.Name] = true
		}
		for _, field := range []struct {
			name  string
			value string
		}{
			{prefix + ".url", src.URL},
			{prefix + ".schema", src.Schema},
		} {
			if field.value == "" {
				continue
			}
			if _, err := url.Parse(field.value); err != nil {
				return fmt.Errorf("%s: invalid URL %q", field.name, field.value)
			}
		}
	}
	return nil
}

// GroupingEnabled reports whether tag grouping is on; it defaults to
// true when the setting is omitted.
func (s Settings) GroupingEnabled() bool {
	return s.Grouping == nil || *s.Grouping
}

// TagMode maps the configured rewrite mode onto the preparer's modes.
func (s Settings) TagMode() preparer.TagMode {
	if s.TagRewrite == TagRewriteInPlace {
		return preparer.TagModeInPlace
	}
	return preparer.TagModeCollapse
}

// duration returns the parsed duration, or zero for empty or
// unparseable values. Validation already rejected unparseable strings.
func duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

// RegistrySources converts the configured sources for the registry.
func (c *Config) RegistrySources() []registry.Source {
	out := make([]registry.Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		out = append(out, registry.Source{
			Name:    src.Name,
			URL:     src.URL,
			SpecURL: src.Schema,
			Enabled: src.Enabled == nil || *src.Enabled,
		})
	}
	return out
}

// AggregatorConfig builds the aggregation pipeline's configuration.
func (c *Config) AggregatorConfig() aggregator.Config {
	return aggregator.Config{
		Sources:      c.RegistrySources(),
		Grouping:     c.Settings.GroupingEnabled(),
		TagMode:      c.Settings.TagMode(),
		Proxy:        c.Settings.Proxy,
		Title:        c.Settings.Title,
		Description:  c.Settings.Description,
		Version:      c.Settings.Version,
		ProbeTimeout: duration(c.Settings.ProbeTimeout),
		FetchTimeout: duration(c.Settings.FetchTimeout),
		CacheTTL:     duration(c.Settings.RefreshTTL),
	}
}
