// Package config loads flatvec's YAML configuration, following the same
// defaults-then-merge-then-validate shape as the teacher's project config,
// scoped down to the flags and knobs the search engine actually has.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is flatvec's complete configuration. It mirrors spec.md §6's CLI
// flags plus the ambient knobs (logging, kernel selection) the spec leaves
// to the engine.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Query   QueryConfig   `yaml:"query" json:"query"`
	GPU     GPUConfig     `yaml:"gpu" json:"gpu"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// QueryConfig configures the default brute-force query run by `flatvec query`.
type QueryConfig struct {
	InputPath string `yaml:"input_path" json:"input_path"`
	MaxVecs   int    `yaml:"max_vecs" json:"max_vecs"`
	TopK      int    `yaml:"top_k" json:"top_k"`
	Workers   int    `yaml:"workers" json:"workers"`
	Backend   string `yaml:"backend" json:"backend"`   // "cpu" or "gpu"
	Selector  string `yaml:"selector" json:"selector"` // "bubble", "quickselect", "minheap"
}

// GPUConfig configures the default OpenCL platform/device, overridden at
// the command line by -p/-d per spec.md §6. Variant is validated on load
// but not consulted by the search engine, which uses the tiled kernel when
// the dimensionality is a multiple of 16 and the simple kernel otherwise.
type GPUConfig struct {
	Platform int    `yaml:"platform" json:"platform"`
	Device   int    `yaml:"device" json:"device"`
	Variant  string `yaml:"variant" json:"variant"` // "simple" or "tiled"
}

// LoggingConfig mirrors internal/logging.Config, kept as a separate type so
// config.yaml doesn't need to import the logging package.
type LoggingConfig struct {
	Level         string `yaml:"level" json:"level"`
	FilePath      string `yaml:"file_path" json:"file_path"`
	MaxSizeMB     int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles      int    `yaml:"max_files" json:"max_files"`
	WriteToStderr bool   `yaml:"write_to_stderr" json:"write_to_stderr"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Query: QueryConfig{
			InputPath: "vectors.bin",
			MaxVecs:   0, // 0 means "all", per spec.md §6
			TopK:      10,
			Workers:   runtime.NumCPU(),
			Backend:   "cpu",
			Selector:  "quickselect",
		},
		GPU: GPUConfig{
			Platform: 0,
			Device:   0,
			Variant:  "simple",
		},
		Logging: LoggingConfig{
			Level:         "info",
			FilePath:      defaultLogPath(),
			MaxSizeMB:     10,
			MaxFiles:      5,
			WriteToStderr: true,
		},
	}
}

// defaultLogPath avoids importing internal/logging just for one path,
// mirroring its ~/.flatvec/logs/flatvec.log layout directly.
func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".flatvec", "logs", "flatvec.log")
	}
	return filepath.Join(home, ".flatvec", "logs", "flatvec.log")
}

// GetUserConfigPath returns the path to the user/global configuration file,
// following the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/flatvec/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/flatvec/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flatvec", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "flatvec", "config.yaml")
	}
	return filepath.Join(home, ".config", "flatvec", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns a nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the effective configuration for dir, applying in order of
// increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/flatvec/config.yaml)
//  3. Project config (.flatvec.yaml in dir)
//
// No environment-variable layer: spec.md §6 reserves environment overrides
// for the ingestion binary (DB_CONNECTION_STRING, DB_TABLE) and explicitly
// keeps the query engine itself flag/config-file only.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .flatvec.yaml or .flatvec.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".flatvec.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".flatvec.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Query.InputPath != "" {
		c.Query.InputPath = other.Query.InputPath
	}
	if other.Query.MaxVecs != 0 {
		c.Query.MaxVecs = other.Query.MaxVecs
	}
	if other.Query.TopK != 0 {
		c.Query.TopK = other.Query.TopK
	}
	if other.Query.Workers != 0 {
		c.Query.Workers = other.Query.Workers
	}
	if other.Query.Backend != "" {
		c.Query.Backend = other.Query.Backend
	}
	if other.Query.Selector != "" {
		c.Query.Selector = other.Query.Selector
	}

	if other.GPU.Platform != 0 {
		c.GPU.Platform = other.GPU.Platform
	}
	if other.GPU.Device != 0 {
		c.GPU.Device = other.GPU.Device
	}
	if other.GPU.Variant != "" {
		c.GPU.Variant = other.GPU.Variant
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Query.MaxVecs != 0 && c.Query.MaxVecs < 256 {
		return fmt.Errorf("query.max_vecs must be 0 (all) or >= 256, got %d", c.Query.MaxVecs)
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("query.top_k must be positive, got %d", c.Query.TopK)
	}
	if c.Query.Workers <= 0 {
		return fmt.Errorf("query.workers must be positive, got %d", c.Query.Workers)
	}

	validBackends := map[string]bool{"cpu": true, "gpu": true}
	if !validBackends[strings.ToLower(c.Query.Backend)] {
		return fmt.Errorf("query.backend must be 'cpu' or 'gpu', got %s", c.Query.Backend)
	}

	validSelectors := map[string]bool{"bubble": true, "quickselect": true, "minheap": true}
	if !validSelectors[strings.ToLower(c.Query.Selector)] {
		return fmt.Errorf("query.selector must be 'bubble', 'quickselect', or 'minheap', got %s", c.Query.Selector)
	}

	validVariants := map[string]bool{"simple": true, "tiled": true}
	if !validVariants[strings.ToLower(c.GPU.Variant)] {
		return fmt.Errorf("gpu.variant must be 'simple' or 'tiled', got %s", c.GPU.Variant)
	}

	if c.GPU.Platform < 0 {
		return fmt.Errorf("gpu.platform must be non-negative, got %d", c.GPU.Platform)
	}
	if c.GPU.Device < 0 {
		return fmt.Errorf("gpu.device must be non-negative, got %d", c.GPU.Device)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns a nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// ExpandPath expands a leading "~" to the user's home directory and any
// $VAR / ${VAR} environment references, matching spec.md §6's "path may
// contain ~/env vars" note for -i/--input.
func ExpandPath(path string) string {
	expanded := os.ExpandEnv(path)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		if expanded == "~" {
			return home
		}
		return filepath.Join(home, expanded[2:])
	}
	return expanded
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
