// Package config loads pdparse settings from defaults, a config file,
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides, e.g. PD_PARSER_PORT=9090
const EnvPrefix = "PD_PARSER_"

// DefaultFiles are tried in order when no config file is given
var DefaultFiles = []string{"pd-parser.toml", "pd-parser.yaml", "pd-parser.yml"}

// Config holds all configuration for the application
type Config struct {
	Format     string        `koanf:"format"`
	Watch      bool          `koanf:"watch"`
	Serve      bool          `koanf:"serve"`
	Port       int           `koanf:"port"`
	Validate   bool          `koanf:"validate"`
	Strict     bool          `koanf:"strict"`
	Jobs       int           `koanf:"jobs"`
	Debounce   time.Duration `koanf:"debounce"`
	Verbosity  string        `koanf:"verbosity"`
	VerboseCnt int           `koanf:"verbose"`
	LogJSON    bool          `koanf:"log-json"`

	// File is the config file that was loaded, if any
	File string `koanf:"-"`
}

// Defaults returns the built-in configuration values
func Defaults() map[string]any {
	return map[string]any{
		"format":    "summary",
		"watch":     false,
		"serve":     false,
		"port":      8080,
		"validate":  false,
		"strict":    false,
		"jobs":      0,
		"debounce":  "300ms",
		"verbosity": "",
		"verbose":   0,
		"log-json":  false,
	}
}

// Load loads configuration. Priority: Flags > Env > Config File > Defaults.
// configFile may be empty, in which case the DefaultFiles are tried and
// skipped if missing. An explicitly named file must exist.
func Load(f *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	loaded, err := loadFile(k, configFile)
	if err != nil {
		return nil, err
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those set explicitly override lower layers
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = loaded

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, configFile string) (string, error) {
	candidates := DefaultFiles
	if configFile != "" {
		candidates = []string{configFile}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) && configFile == "" {
				continue
			}
			return "", fmt.Errorf("config file %s: %w", path, err)
		}

		parser, err := parserFor(path)
		if err != nil {
			return "", err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return "", fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, fmt.Errorf("config file %s: unsupported format, use .toml or .yaml", path)
}

// Check validates value ranges
func (c *Config) Check() error {
	switch c.Format {
	case "summary", "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q, expected summary, json or yaml", c.Format)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("invalid jobs %d, must be 0 (one per CPU) or more", c.Jobs)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s", c.Debounce)
	}
	return nil
}

// mapProvider loads a plain map as a koanf layer
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
