// Package config loads and validates the tidgate configuration document: the
// testid vocabulary, the route requirements, the critical-route list, and the
// endpoints and browser settings used by the probers. Validation failures are
// fatal at load time so the gate never runs against an inconsistent setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tidgate/internal/browser"
	"tidgate/internal/registry"
	"tidgate/internal/testid"
)

// Config is the root configuration document.
type Config struct {
	// AppURL is the base URL of the application the live prober navigates.
	AppURL string `yaml:"app_url"`
	// RemoteURL is the base URL of the remote verification endpoint.
	// Empty disables remote corroboration.
	RemoteURL string `yaml:"remote_url"`
	// RemoteTimeoutMs bounds the remote call. Zero means 10s.
	RemoteTimeoutMs int `yaml:"remote_timeout_ms"`
	// PlaceholderID substitutes :param segments in critical routes.
	PlaceholderID string `yaml:"placeholder_id"`
	// CriticalRoutes are the patterns the gate enforces.
	CriticalRoutes []string `yaml:"critical_routes"`
	// Testids maps symbolic keys to literal data-testid values.
	Testids map[string]string `yaml:"testids"`
	// Routes binds patterns to required keys.
	Routes []RouteConfig `yaml:"routes"`
	// Browser configures the live DOM session.
	Browser browser.Config `yaml:"browser"`
	// HistoryPath, when set with --history, is the SQLite file recording
	// gate runs.
	HistoryPath string `yaml:"history_path"`
}

// RouteConfig is one requirement entry in the document.
type RouteConfig struct {
	Pattern string   `yaml:"pattern"`
	Require []string `yaml:"require"`
}

// Default returns a config with usable defaults for everything but the
// vocabulary and routes.
func Default() *Config {
	return &Config{
		AppURL:        "http://localhost:3000",
		PlaceholderID: "testid-gate-0000",
		Browser:       browser.DefaultConfig(),
		HistoryPath:   ".tidgate/history.db",
	}
}

// Load reads and validates the YAML document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the parts not covered by vocabulary/registry construction.
func (c *Config) Validate() error {
	if c.AppURL == "" {
		return fmt.Errorf("app_url required")
	}
	if len(c.Testids) == 0 {
		return fmt.Errorf("testids vocabulary required")
	}
	if len(c.Routes) == 0 {
		return fmt.Errorf("at least one route requirement required")
	}
	for _, r := range c.CriticalRoutes {
		if r == "" || r[0] != '/' {
			return fmt.Errorf("critical route %q: must be an absolute path", r)
		}
	}
	return nil
}

// Vocabulary builds the validated testid vocabulary.
func (c *Config) Vocabulary() (*testid.Vocabulary, error) {
	entries := make(map[testid.Key]string, len(c.Testids))
	for k, v := range c.Testids {
		entries[testid.Key(k)] = v
	}
	return testid.NewVocabulary(entries)
}

// Registry builds the validated requirement registry.
func (c *Config) Registry(vocab *testid.Vocabulary) (*registry.Registry, error) {
	reqs := make([]registry.Requirement, 0, len(c.Routes))
	for _, r := range c.Routes {
		keys := make([]testid.Key, 0, len(r.Require))
		for _, k := range r.Require {
			keys = append(keys, testid.Key(k))
		}
		reqs = append(reqs, registry.Requirement{Pattern: r.Pattern, Keys: keys})
	}
	return registry.New(vocab, reqs)
}
