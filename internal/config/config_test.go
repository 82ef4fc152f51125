package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "MAX_UPLOAD_BYTES", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_ORG",
	"DEFAULT_MODEL", "VISION_MODEL", "UPSTREAM_TIMEOUT", "PERSIST_JOBS", "DATA_DIR",
	"LOG_LEVEL", "LOG_FORMAT",
}

// isolateEnv unsets every variable Load reads and restores them afterwards.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if prev, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Upstream.DefaultModel)
	assert.Equal(t, "gpt-4o", cfg.Upstream.VisionModel)
	assert.Equal(t, 60*time.Second, cfg.Upstream.Timeout)
	assert.False(t, cfg.Storage.Persist)
}

func TestLoadYAMLFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
upstream:
  api_key: sk-file
  base_url: http://localhost:11434/v1
  default_model: gpt-4
  timeout: 15s
  headers:
    X-Tenant: acme
storage:
  persist: true
  data_dir: /var/lib/llmjobs
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sk-file", cfg.Upstream.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, "gpt-4", cfg.Upstream.DefaultModel)
	assert.Equal(t, "gpt-4o", cfg.Upstream.VisionModel, "unset keys keep defaults")
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, Headers{"X-Tenant": "acme"}, cfg.Upstream.Headers)
	assert.True(t, cfg.Storage.Persist)
	assert.Equal(t, "/var/lib/llmjobs", cfg.Storage.DataDir)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
upstream:
  api_key: sk-file
`)
	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("VISION_MODEL", "gpt-4-vision-preview")
	t.Setenv("UPSTREAM_TIMEOUT", "2m")
	t.Setenv("PERSIST_JOBS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sk-env", cfg.Upstream.APIKey)
	assert.Equal(t, "gpt-4-vision-preview", cfg.Upstream.VisionModel)
	assert.Equal(t, 2*time.Minute, cfg.Upstream.Timeout)
	assert.True(t, cfg.Storage.Persist)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "not-a-number")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{name: "blank base url", mutate: func(c *Config) { c.Upstream.BaseURL = " " }},
		{name: "blank default model", mutate: func(c *Config) { c.Upstream.DefaultModel = "" }},
		{name: "blank vision model", mutate: func(c *Config) { c.Upstream.VisionModel = "" }},
		{name: "negative timeout", mutate: func(c *Config) { c.Upstream.Timeout = -time.Second }},
		{name: "bad header", mutate: func(c *Config) { c.Upstream.Headers = Headers{"X Bad": "v"} }},
		{name: "persist without dir", mutate: func(c *Config) { c.Storage.Persist = true; c.Storage.DataDir = "" }},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMissingAPIKeyIsNotAStartupError(t *testing.T) {
	cfg := Default()
	cfg.Upstream.APIKey = ""
	assert.NoError(t, cfg.Validate())
}
