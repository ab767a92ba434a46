package config

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/spf13/viper"
)

// Config represents the complete rustdex configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Graphs   GraphsConfig   `json:"graphs" mapstructure:"graphs"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Profiles ProfilesConfig `json:"profiles" mapstructure:"profiles"`
	Output   OutputConfig   `json:"output" mapstructure:"output"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// GraphsConfig says where documentation graphs live and how many to
// flatten concurrently.
type GraphsConfig struct {
	Dir   string   `json:"dir" mapstructure:"dir"`
	Files []string `json:"files" mapstructure:"files"`
	Jobs  int      `json:"jobs" mapstructure:"jobs"`
}

// CacheConfig contains record cache configuration
type CacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// ProfilesConfig says where user-defined counting profiles live.
type ProfilesConfig struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

// OutputConfig contains terminal output configuration
type OutputConfig struct {
	Color string `json:"color" mapstructure:"color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Graphs: GraphsConfig{
			Dir:   "assets",
			Files: []string{"core.json", "alloc.json", "std.json"},
			Jobs:  4,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Profiles: ProfilesConfig{
			Dir: filepath.Join(".rustdex", "profiles"),
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .rustdex/config.json under root.
// A missing file is not an error; the defaults apply.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".rustdex"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .rustdex/config.json under root.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".rustdex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// GraphPaths returns the configured graph files resolved against the
// graph directory (itself resolved against root when relative).
func (c *Config) GraphPaths(root string) []string {
	dir := c.Graphs.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	paths := make([]string, 0, len(c.Graphs.Files))
	for _, f := range c.Graphs.Files {
		paths = append(paths, filepath.Join(dir, f))
	}
	return paths
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Graphs.Jobs < 0 {
		return &ConfigError{Field: "graphs.jobs", Message: "must not be negative"}
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return &ConfigError{Field: "output.color", Message: "must be auto, on, or off"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn, or error"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
