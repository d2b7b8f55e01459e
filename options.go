package nyris

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nyris/nyris-go/internal/config"
	"github.com/nyris/nyris-go/internal/transport/httpx"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey       string
	host         string
	outputFormat string
	language     string
	clientID     string

	timeout       time.Duration
	retryCount    int
	retryInterval time.Duration
	debug         bool
	httpClient    *http.Client
	doer          httpx.Doer

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	d := config.Default()
	return &clientConfig{
		host:          d.API.Host,
		outputFormat:  d.API.OutputFormat,
		language:      d.API.Language,
		timeout:       time.Duration(d.HTTP.TimeoutSec) * time.Second,
		retryCount:    d.HTTP.RetryCount,
		retryInterval: time.Duration(d.HTTP.RetryIntervalMs) * time.Millisecond,
	}
}

// WithHost sets the API base URL. Default: https://api.nyris.io/.
func WithHost(host string) Option {
	return optionFunc(func(c *clientConfig) {
		c.host = host
	})
}

// WithOutputFormat sets the default Accept mime type of matching calls.
// Default: application/offers.complete+json.
func WithOutputFormat(mime string) Option {
	return optionFunc(func(c *clientConfig) {
		c.outputFormat = mime
	})
}

// WithLanguage sets the default Accept-Language. Default: "*".
func WithLanguage(lang string) Option {
	return optionFunc(func(c *clientConfig) {
		c.language = lang
	})
}

// WithClientID sets the X-Nyris-ClientID header.
func WithClientID(id string) Option {
	return optionFunc(func(c *clientConfig) {
		c.clientID = id
	})
}

// WithTimeout sets the per-attempt HTTP timeout. Default: 30s.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRetryCount sets the total number of attempts per call. Default: 3.
func WithRetryCount(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryCount = n
	})
}

// WithRetryInterval sets the initial backoff between attempts.
func WithRetryInterval(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryInterval = d
	})
}

// WithDebug logs every HTTP exchange at debug level. Credentials are never logged.
func WithDebug(enabled bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.debug = enabled
	})
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations, HTTP
// attempts) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// WithConfig applies a loaded configuration. Options given after it override
// its values.
func WithConfig(cfg Config) Option {
	return optionFunc(func(c *clientConfig) {
		cfg.ApplyDefaults()
		if cfg.API.Key != "" {
			c.apiKey = cfg.API.Key
		}
		c.host = cfg.API.Host
		c.outputFormat = cfg.API.OutputFormat
		c.language = cfg.API.Language
		c.clientID = cfg.API.ClientID
		c.timeout = time.Duration(cfg.HTTP.TimeoutSec) * time.Second
		c.retryCount = cfg.HTTP.RetryCount
		c.retryInterval = time.Duration(cfg.HTTP.RetryIntervalMs) * time.Millisecond
		c.debug = cfg.HTTP.Debug
	})
}

// withDoer replaces the transport. Used by tests.
func withDoer(d httpx.Doer) Option {
	return optionFunc(func(c *clientConfig) {
		c.doer = d
	})
}

// LoadConfig reads a YAML configuration file. ${VAR} and ${VAR:-default}
// are expanded from the environment.
func LoadConfig(path string) (Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("nyris: %w", err)
	}
	return cfg, nil
}
