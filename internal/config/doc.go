// Package config handles configuration loading for stride.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from STRIDE_CONFIG environment variable
//  2. ~/.config/stride/config.yaml
//
// When no file exists, Default() supplies a usable configuration.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	database:
//	  path: "${STRIDE_DATA_DIR}/stride.db"
//
// Syntax: ${VAR_NAME}
//
// Individual fields can also be overridden directly through STRIDE_*
// environment variables (STRIDE_MODEL, STRIDE_API_TIMEOUT, STRIDE_DB_PATH,
// and so on), which take precedence over file values.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	api:
//	  timeout: "30s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Completion API:
//
//	api:
//	  base_url: "https://api.anthropic.com/v1/messages"
//	  timeout: "30s"
//
// Coach settings:
//
//	coach:
//	  model: "claude-sonnet-4-20250514"
//	  max_tokens: 1024
//	  system_prompt_path: "~/.config/stride/prompt.md"
//
// Database:
//
//	database:
//	  path: "/var/lib/stride/stride.db"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Model name presence
//   - Positive max_tokens
//   - Duration format validity
//   - Logging format values
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/home/user/.config/stride/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
