package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Document    string  `koanf:"document"`
	Serve       bool    `koanf:"serve"`
	Port        int     `koanf:"port"`
	Watch       bool    `koanf:"watch"`
	OpenBrowser bool    `koanf:"open"`
	Export      string  `koanf:"export"`
	OutDir      string  `koanf:"out"`
	LogFile     string  `koanf:"log-file"`
	Verbosity   string  `koanf:"verbosity"`
	VerboseCnt  int     `koanf:"verbose"`
	MinZoom     float64 `koanf:"min-zoom"`
	MaxZoom     float64 `koanf:"max-zoom"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"document":  "",
		"serve":     false,
		"port":      8080,
		"watch":     false,
		"open":      true,
		"export":    "",
		"out":       ".",
		"log-file":  "",
		"verbosity": "",
		"verbose":   0,
		"min-zoom":  0.25,
		"max-zoom":  4.0,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - meetmap.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("meetmap.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: MEETMAP_ (e.g., MEETMAP_PORT=9090, MEETMAP_MIN_ZOOM=0.5)
	if err := k.Load(env.Provider("MEETMAP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "MEETMAP_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Mode returns which of the three run modes the config selects
func (c *Config) Mode() string {
	switch {
	case c.Export != "":
		return "export"
	case c.Serve:
		return "serve"
	default:
		return "tui"
	}
}

// Validate rejects unusable settings and normalizes the zoom bounds
// so a bad pair can never wedge the viewport.
func (c *Config) Validate() error {
	switch c.Export {
	case "", "png", "pdf", "json", "all":
	default:
		return fmt.Errorf("invalid export format %q (want png, pdf, json, or all)", c.Export)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		c.MinZoom = 0.25
		c.MaxZoom = 4.0
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
