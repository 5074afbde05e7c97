// Package config loads the completion engine configuration from a YAML, JSON
// or TOML document.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/atinylittleshell/gshcomplete/internal/completion/completers"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the engine configuration.
type Config struct {
	// Providers enables or disables providers by id. Providers not listed
	// do not run.
	Providers map[string]bool `koanf:"providers"`

	// CDPath is one of off, relative or absolute.
	CDPath string `koanf:"cdPath"`

	LogLevel string `koanf:"logLevel"`

	// ProviderTimeout bounds each provider call.
	ProviderTimeout time.Duration `koanf:"providerTimeout"`

	// HistoryFile is the history database. Empty means the default location.
	HistoryFile string `koanf:"historyFile"`

	// RcFiles are bash scripts sourced into the completion shell, typically
	// holding aliases and `complete` specs.
	RcFiles []string `koanf:"rcFiles"`
}

var _ completion.Configuration = (*Config)(nil)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]bool{
			completers.CommandsProviderID: true,
			completers.SpecsProviderID:    true,
			completers.HistoryProviderID:  true,
		},
		CDPath:          string(completion.CDPathAbsolute),
		LogLevel:        "info",
		ProviderTimeout: completion.DefaultProviderTimeout,
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		parser = yaml.Parser()
	case ".toml":
		parser = toml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated and numeric settings.
func (c *Config) Validate() error {
	switch completion.CDPathMode(c.CDPath) {
	case completion.CDPathOff, completion.CDPathRelative, completion.CDPathAbsolute:
	default:
		return fmt.Errorf("invalid cdPath %q: want off, relative or absolute", c.CDPath)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("invalid providerTimeout %s: must be positive", c.ProviderTimeout)
	}
	return nil
}

// EnabledProviders implements completion.Configuration.
func (c *Config) EnabledProviders() map[string]bool {
	return maps.Clone(c.Providers)
}

// CDPathMode implements completion.Configuration.
func (c *Config) CDPathMode() completion.CDPathMode {
	return completion.CDPathMode(c.CDPath)
}

// Level returns the configured log level, or info when it does not parse.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// ExpandHome resolves a leading ~ in path against home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
