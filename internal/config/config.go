package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the recall CLI configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Import   ImportConfig   `yaml:"import"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // BadgerDB directory
}

// SearchConfig holds search engine settings.
type SearchConfig struct {
	SnippetLength     int `yaml:"snippet_length"`
	MessageLimit      int `yaml:"message_limit"`
	ConversationLimit int `yaml:"conversation_limit"`
	SuggestionLimit   int `yaml:"suggestion_limit"`
}

// ImportConfig holds transcript import settings.
type ImportConfig struct {
	PoolSize   int           `yaml:"pool_size"` // 0 = NumCPU/2
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Search.SnippetLength <= 0 {
		c.Search.SnippetLength = 150
	}
	if c.Search.MessageLimit <= 0 {
		c.Search.MessageLimit = 50
	}
	if c.Search.ConversationLimit <= 0 {
		c.Search.ConversationLimit = 20
	}
	if c.Search.SuggestionLimit <= 0 {
		c.Search.SuggestionLimit = 10
	}
	if c.Import.MaxRetries <= 0 {
		c.Import.MaxRetries = 5
	}
	if c.Import.RetryDelay <= 0 {
		c.Import.RetryDelay = 10 * time.Millisecond
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Import.PoolSize < 0 {
		return fmt.Errorf("import.pool_size must not be negative, got %d", c.Import.PoolSize)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to an slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", name)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
