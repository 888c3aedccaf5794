// Package config provides configuration types and defaults for dmdoc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/dmdoc/internal/log"
	"github.com/zjrosen/dmdoc/internal/tracing"
)

// DefaultPath is where dmdoc init writes the project config.
const DefaultPath = ".dmdoc/config.yaml"

// Validation errors
var (
	ErrNoSources     = errors.New("sources cannot be empty")
	ErrNoExtensions  = errors.New("extensions cannot be empty")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds all configuration options for dmdoc.
type Config struct {
	Sources                []string        `mapstructure:"sources"`
	Extensions             []string        `mapstructure:"extensions"`
	Workers                int             `mapstructure:"workers"`
	AddFunctionParentheses bool            `mapstructure:"add_function_parentheses"`
	Log                    LogConfig       `mapstructure:"log"`
	Watch                  WatchConfig     `mapstructure:"watch"`
	Cache                  CacheConfig     `mapstructure:"cache"`
	Tracing                tracing.Config  `mapstructure:"tracing"`
	Flags                  map[string]bool `mapstructure:"flags"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // empty writes to stderr
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig controls the resolution cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/dmdoc/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dmdoc", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Sources:                []string{"docs"},
		Extensions:             []string{".rst", ".dm.txt"},
		Workers:                4,
		AddFunctionParentheses: true,
		Log: LogConfig{
			Level: "warn",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Tracing: tracing.DefaultConfig(), // file_path derived from config dir at runtime
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateSources(c.Sources, c.Extensions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: watch.debounce must be positive, got %s", ErrInvalidConfig, c.Watch.Debounce)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl cannot be negative, got %s", ErrInvalidConfig, c.Cache.TTL)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateSources checks the source directories and extensions.
func ValidateSources(sources, extensions []string) error {
	if len(sources) == 0 {
		return ErrNoSources
	}
	for i, s := range sources {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("sources[%d] is blank", i)
		}
	}
	if len(extensions) == 0 {
		return ErrNoExtensions
	}
	for i, ext := range extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions[%d] must start with \".\", got %q", i, ext)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" && !slices.Contains(tracing.Exporters(), tc.Exporter) {
		return fmt.Errorf("tracing.exporter must be one of %s, got %q", strings.Join(tracing.Exporters(), ", "), tc.Exporter)
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# dmdoc configuration

# Directories scanned for documentation sources
sources:
  - docs

# File extensions treated as sources
extensions:
  - .rst
  - .dm.txt

# Parallel signature parsers
workers: 4

# Append "()" to titles of proc and atom references
add_function_parentheses: true

log:
  # path: dmdoc.log   # default: stderr
  level: warn         # debug, info, warn, error

watch:
  debounce: 300ms     # quiet period before rebuilding

cache:
  ttl: 10m            # lifetime of memoised lookups

# Feature flags
# flags:
#   strict-duplicates: true   # reject a path declared by two documents
#   resolve-cache: false      # disable the resolution cache

# Tracing (OpenTelemetry)
tracing:
  enabled: false
  exporter: file
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: dmdoc
  #
  # Example: send traces to Jaeger via OTLP
  # enabled: true
  # exporter: otlp
  # otlp_endpoint: jaeger.internal:4317
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
