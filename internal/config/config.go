package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHost            = "https://api.nyris.io/"
	DefaultOutputFormat    = "application/offers.complete+json"
	DefaultLanguage        = "*"
	DefaultTimeoutSec      = 30
	DefaultRetryCount      = 3
	DefaultRetryIntervalMs = 200
)

// Config holds the client configuration and the sandbox server settings.
type Config struct {
	API     APIConfig     `yaml:"api"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
	Sandbox SandboxConfig `yaml:"sandbox"`
}

// APIConfig holds the visual-search API identity and content negotiation.
type APIConfig struct {
	Key          string `yaml:"key"`
	Host         string `yaml:"host"`
	OutputFormat string `yaml:"output_format"`
	Language     string `yaml:"language"`
	ClientID     string `yaml:"client_id"`
}

// HTTPConfig holds client transport settings.
type HTTPConfig struct {
	TimeoutSec      int  `yaml:"timeout_sec"`
	RetryCount      int  `yaml:"retry_count"` // total attempts
	RetryIntervalMs int  `yaml:"retry_interval_ms"`
	Debug           bool `yaml:"debug"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// SandboxConfig holds settings of the local fake API server.
type SandboxConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"`
	CatalogSize     int      `yaml:"catalog_size"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the YAML file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substituting ${VAR} and ${VAR:-default} first.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.API.Host == "" {
		c.API.Host = DefaultHost
	}
	if c.API.OutputFormat == "" {
		c.API.OutputFormat = DefaultOutputFormat
	}
	if c.API.Language == "" {
		c.API.Language = DefaultLanguage
	}
	if c.HTTP.TimeoutSec <= 0 {
		c.HTTP.TimeoutSec = DefaultTimeoutSec
	}
	if c.HTTP.RetryCount <= 0 {
		c.HTTP.RetryCount = DefaultRetryCount
	}
	if c.HTTP.RetryIntervalMs <= 0 {
		c.HTTP.RetryIntervalMs = DefaultRetryIntervalMs
	}
	if c.Sandbox.ReadTimeoutSec <= 0 {
		c.Sandbox.ReadTimeoutSec = 10
	}
	if c.Sandbox.WriteTimeoutSec <= 0 {
		c.Sandbox.WriteTimeoutSec = 10
	}
	if c.Sandbox.ShutdownSec <= 0 {
		c.Sandbox.ShutdownSec = 10
	}
	if c.Sandbox.CatalogSize <= 0 {
		c.Sandbox.CatalogSize = 100
	}
}

// Validate checks the client settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.Host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.host must be an absolute http(s) URL, got %q", c.API.Host)
	}
	if c.HTTP.RetryCount > 10 {
		return fmt.Errorf("http.retry_count must be between 1 and 10, got %d", c.HTTP.RetryCount)
	}
	if c.Sandbox.Port < 0 || c.Sandbox.Port > 65535 {
		return fmt.Errorf("sandbox.port must be between 1 and 65535, got %d", c.Sandbox.Port)
	}
	return nil
}

// ValidateSandbox checks the settings the sandbox server needs.
func (c *Config) ValidateSandbox() error {
	if c.Sandbox.Port <= 0 || c.Sandbox.Port > 65535 {
		return fmt.Errorf("sandbox.port must be between 1 and 65535, got %d", c.Sandbox.Port)
	}
	if len(c.Sandbox.APIKeys) == 0 {
		return fmt.Errorf("sandbox.api_keys is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
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
