// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers YAML parsing, env var expansion, overrides, and duration handling

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCompleteConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://api.example.com/v1/messages"
  timeout: "45s"
coach:
  model: "claude-sonnet-4-20250514"
  max_tokens: 2048
  system_prompt_path: "/etc/stride/prompt.md"
database:
  path: "/var/lib/stride/stride.db"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1/messages", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Coach.Model)
	assert.Equal(t, 2048, cfg.Coach.MaxTokens)
	assert.Equal(t, "/etc/stride/prompt.md", cfg.Coach.SystemPromptPath)
	assert.Equal(t, "/var/lib/stride/stride.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/stride.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Coach.Model)
	assert.Equal(t, 1024, cfg.Coach.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("STRIDE_TEST_DB_DIR", "/data/stride")

	path := writeConfig(t, `
database:
  path: "${STRIDE_TEST_DB_DIR}/stride.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/stride/stride.db", cfg.Database.Path)
}

func TestLoadUnsetEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `
coach:
  model: "claude-sonnet-4-20250514${STRIDE_TEST_DOES_NOT_EXIST}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Coach.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("STRIDE_MODEL", "claude-opus-4-20250514")
	t.Setenv("STRIDE_API_TIMEOUT", "90s")

	path := writeConfig(t, `
api:
  timeout: "45s"
coach:
  model: "claude-sonnet-4-20250514"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-20250514", cfg.Coach.Model)
	assert.Equal(t, 90*time.Second, cfg.API.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "coach: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
api:
  timeout: "not-a-duration"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.timeout")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.Coach.Model = "" },
			wantErr: "coach.model is required",
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.Coach.MaxTokens = 0 },
			wantErr: "coach.max_tokens must be positive",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	promptPath := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(promptPath, []byte("You are a running coach."), 0644))

	cfg := Default()
	cfg.Coach.SystemPromptPath = promptPath

	prompt, err := cfg.SystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "You are a running coach.", prompt)
}

func TestSystemPromptUnset(t *testing.T) {
	cfg := Default()
	prompt, err := cfg.SystemPrompt()
	require.NoError(t, err)
	assert.Empty(t, prompt)
}
