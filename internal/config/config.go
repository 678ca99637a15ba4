// ABOUTME: Configuration loading and parsing for stride
// ABOUTME: YAML files with environment variable expansion, env overrides, and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config represents the complete stride configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Coach    CoachConfig    `yaml:"coach"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig holds completion API settings
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"STRIDE_API_BASE_URL"`
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout" env:"STRIDE_API_TIMEOUT"`
}

// CoachConfig holds model selection and prompt settings
type CoachConfig struct {
	Model            string `yaml:"model" env:"STRIDE_MODEL"`
	MaxTokens        int    `yaml:"max_tokens" env:"STRIDE_MAX_TOKENS"`
	SystemPromptPath string `yaml:"system_prompt_path" env:"STRIDE_SYSTEM_PROMPT_PATH"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" env:"STRIDE_DB_PATH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"STRIDE_LOG_LEVEL"`
	Format string `yaml:"format" env:"STRIDE_LOG_FORMAT"`
}

// Default returns the configuration used when no config file exists.
// DatabasePath is left empty and resolved against the data directory by
// the caller.
func Default() *Config {
	return &Config{
		Coach: CoachConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded
// within the file, and STRIDE_* environment variables override individual
// fields afterward. Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Environment overrides win over file values
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.API.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.API.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
		cfg.API.Timeout = d
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	return nil
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Coach.Model == "" {
		return fmt.Errorf("coach.model is required")
	}
	if c.Coach.MaxTokens <= 0 {
		return fmt.Errorf("coach.max_tokens must be positive")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\"")
	}

	return nil
}

// SystemPrompt reads the configured system prompt file. An unset path
// yields an empty prompt, which the completion client omits from requests.
func (c *Config) SystemPrompt() (string, error) {
	if c.Coach.SystemPromptPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Coach.SystemPromptPath)
	if err != nil {
		return "", fmt.Errorf("reading system prompt: %w", err)
	}
	return string(data), nil
}
