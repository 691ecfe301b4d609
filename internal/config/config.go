// Package config provides YAML-based configuration loading for pdfchat.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file.
const (
	EnvAPIBaseURL = "PDFCHAT_API_BASE_URL"
	EnvWebPort    = "PDFCHAT_WEB_PORT"
	EnvLogLevel   = "PDFCHAT_LOG_LEVEL"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "pdfchat.yaml"

// Config is the top-level pdfchat configuration, loaded from pdfchat.yaml.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Upload    UploadConfig    `yaml:"upload"`
	Web       WebConfig       `yaml:"web"`
	Notify    NotifyConfig    `yaml:"notify"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`
	DevServer DevServerConfig `yaml:"devserver"`
}

// APIConfig locates the question-answering service. BaseURL carries the
// host and any versioned prefix; the upload and query paths are appended.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// UploadConfig bounds local file reads.
type UploadConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes"`
}

// WebConfig holds settings for the local web front-end.
type WebConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig controls the optional desktop notification hook.
type NotifyConfig struct {
	Command string `yaml:"command"`
}

// ExportConfig holds the default directory for transcript downloads.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DevServerConfig configures the local stand-in backend.
type DevServerConfig struct {
	Port       int           `yaml:"port"`
	Prefix     string        `yaml:"prefix"`
	Database   string        `yaml:"database"`
	StorageDir string        `yaml:"storage_dir"`
	Retention  string        `yaml:"retention"`
	TTL        time.Duration `yaml:"ttl"`
}

// Load reads the .env file (if any), then the YAML config at path, and
// returns a validated Config. A missing file at the default path is not an
// error: defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !(errors.Is(err, fs.ErrNotExist) && path == DefaultPath) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = nil
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config, applying defaults and
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000/api/v1"
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout == 0 {
		c.API.Timeout = 120 * time.Second
	}
	if c.Upload.MaxFileBytes == 0 {
		c.Upload.MaxFileBytes = 20 << 20
	}
	if c.Web.Port == 0 {
		c.Web.Port = 5173
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.DevServer.Port == 0 {
		c.DevServer.Port = 8000
	}
	if c.DevServer.Prefix == "" {
		c.DevServer.Prefix = "/api/v1"
	}
	if c.DevServer.Database == "" {
		c.DevServer.Database = "pdfchat-dev.db"
	}
	if c.DevServer.StorageDir == "" {
		c.DevServer.StorageDir = "documents"
	}
	if c.DevServer.Retention == "" {
		c.DevServer.Retention = "0 * * * *"
	}
	if c.DevServer.TTL == 0 {
		c.DevServer.TTL = 24 * time.Hour
	}
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		c.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup(EnvWebPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: invalid port %q", EnvWebPort, v)
		}
		c.Web.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// validate checks that all values are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, "api.timeout must not be negative")
	}
	if c.Upload.MaxFileBytes < 0 {
		errs = append(errs, "upload.max_file_bytes must not be negative")
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Sprintf("web.port out of range: %d", c.Web.Port))
	}
	if c.DevServer.Port < 0 || c.DevServer.Port > 65535 {
		errs = append(errs, fmt.Sprintf("devserver.port out of range: %d", c.DevServer.Port))
	}
	if !strings.HasPrefix(c.DevServer.Prefix, "/") {
		errs = append(errs, "devserver.prefix must start with /")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
