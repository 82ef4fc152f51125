package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	logFormatJSON    = "json"
	logFormatConsole = "console"
)

// Config represents the application configuration. Values come from
// defaults, then the optional YAML file, then the environment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port           int   `yaml:"port" env:"PORT"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// UpstreamConfig captures authentication and routing info for the provider.
type UpstreamConfig struct {
	APIKey       string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Organization string        `yaml:"organization" env:"OPENAI_ORG"`
	DefaultModel string        `yaml:"default_model" env:"DEFAULT_MODEL"`
	VisionModel  string        `yaml:"vision_model" env:"VISION_MODEL"`
	Timeout      time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT"`
	Headers      Headers       `yaml:"headers"`
}

// Headers contains additional HTTP headers to send with a provider request.
type Headers map[string]string

// StorageConfig controls job file persistence.
type StorageConfig struct {
	Persist bool   `yaml:"persist" env:"PERSIST_JOBS"`
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8000,
			MaxUploadBytes: 20 << 20,
		},
		Upstream: UpstreamConfig{
			BaseURL:      "https://api.openai.com/v1",
			DefaultModel: "gpt-3.5-turbo",
			VisionModel:  "gpt-4o",
			Timeout:      60 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logFormatConsole,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. A .env file in the working directory
// is read when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", absPath, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %q: %w", absPath, err)
	}
	return nil
}

// Validate performs strict sanity checks on the configuration. The API key is
// deliberately not checked: a missing key surfaces as an upstream failure on
// the first call.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}

	if err := validateUpstream(c.Upstream); err != nil {
		return err
	}

	if c.Storage.Persist && strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.data_dir must be provided when storage.persist is enabled")
	}

	switch strings.ToLower(c.Log.Format) {
	case logFormatJSON, logFormatConsole:
	default:
		return fmt.Errorf("log.format %q must be one of %q or %q", c.Log.Format, logFormatJSON, logFormatConsole)
	}

	return nil
}

func validateUpstream(u UpstreamConfig) error {
	if strings.TrimSpace(u.BaseURL) == "" {
		return errors.New("upstream.base_url must be provided")
	}
	if strings.TrimSpace(u.DefaultModel) == "" {
		return errors.New("upstream.default_model must not be empty")
	}
	if strings.TrimSpace(u.VisionModel) == "" {
		return errors.New("upstream.vision_model must not be empty")
	}
	if u.Timeout < 0 {
		return fmt.Errorf("upstream.timeout must not be negative, got %s", u.Timeout)
	}

	for headerKey := range u.Headers {
		if !isCanonicalHTTPHeader(headerKey) {
			return fmt.Errorf("upstream: header %q is not a valid canonical HTTP header", headerKey)
		}
	}
	return nil
}

func isCanonicalHTTPHeader(header string) bool {
	if header == "" {
		return false
	}

	for _, r := range header {
		if !(r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
