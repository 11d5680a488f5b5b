// Package config provides configuration management for the ollamanode service.
// It covers two files: the flat JSON settings file shared with the node
// (settings.go) and the YAML service configuration defined here.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Ollama         OllamaConfig         `yaml:"ollama"`
	Prompts        PromptsConfig        `yaml:"prompts"`
	Node           NodeConfig           `yaml:"node"`
	Logging        LoggingConfig        `yaml:"logging"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Queue          QueueConfig          `yaml:"queue"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8188)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Generation blocks until Ollama answers, so this is generous (default: 10m)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for the server to shutdown
	// gracefully before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// OllamaConfig describes how to reach the inference server.
type OllamaConfig struct {
	// SettingsPath is the flat JSON file holding OLLAMA_URL.
	// Empty means config.json next to the executable.
	SettingsPath string `yaml:"settings_path"`

	// BaseURL overrides the settings file when non-empty.
	BaseURL string `yaml:"base_url"`

	// RequestTimeout bounds each call to Ollama. Zero leaves the HTTP
	// client without a timeout, so a hung server hangs the caller.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// FallbackModel is returned as the only model when discovery fails.
	// Empty means discovery failures yield an empty list.
	FallbackModel string `yaml:"fallback_model"`

	// WatchSettings reloads OLLAMA_URL when the settings file changes.
	WatchSettings bool `yaml:"watch_settings"`
}

// PromptsConfig locates the preset directory.
type PromptsConfig struct {
	// Dir holds one *.txt file per system prompt preset (default: prompts)
	Dir string `yaml:"dir"`
}

// NodeConfig holds defaults applied to generation inputs.
type NodeConfig struct {
	// DefaultModel is used when a request does not name a model
	DefaultModel string `yaml:"default_model"`

	// ImagePromptPrefix prefixes the prompt with an image analysis framing
	// string when images are attached (default: true)
	ImagePromptPrefix bool `yaml:"image_prompt_prefix"`

	// MaxKeepAlive is the upper bound for keep_alive minutes (default: 60)
	MaxKeepAlive int `yaml:"max_keep_alive"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// CircuitBreakerConfig configures the optional breaker around /api/generate.
type CircuitBreakerConfig struct {
	// Enabled turns the breaker on. Off by default: every failure is
	// surfaced immediately and nothing is short-circuited.
	Enabled bool `yaml:"enabled"`

	// MaxRequests is maximum number of requests allowed to pass through when in half-open state
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state for the circuit breaker
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures needed to trip the circuit
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// RateLimitConfig configures the per-client rate limit middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// QueueConfig configures the generation queue in front of /v1/generate.
type QueueConfig struct {
	Enabled bool `yaml:"enabled"`

	// Workers is how many generations may run against Ollama at once.
	Workers int `yaml:"workers"`

	// MaxSize caps the number of requests waiting for a worker. Requests
	// beyond it are rejected with 503.
	MaxSize int `yaml:"max_size"`
}

// DefaultConfig returns the configuration used when no file is given and the
// base every loaded file is decoded on top of.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8188,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Minute,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Ollama: OllamaConfig{
			WatchSettings: true,
		},
		Prompts: PromptsConfig{
			Dir: "prompts",
		},
		Node: NodeConfig{
			ImagePromptPrefix: true,
			MaxKeepAlive:      60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          false,
			MaxRequests:      1,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		Queue: QueueConfig{
			Enabled: false,
			Workers: 1,
			MaxSize: 32,
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves ${VAR} and ${VAR:-default} references.
// An unset variable without a default expands to the empty string.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			if val := os.Getenv(key[:i]); val != "" {
				return val
			}
			return key[i+2:]
		}
		return os.Getenv(key)
	})
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := DefaultConfig()

	dec := yaml.NewDecoder(strings.NewReader(expandEnvVars(string(data))))
	if err := dec.Decode(config); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	if c.Ollama.RequestTimeout < 0 {
		return fmt.Errorf("negative ollama request timeout: %v", c.Ollama.RequestTimeout)
	}
	if c.Ollama.BaseURL != "" && !strings.HasPrefix(c.Ollama.BaseURL, "http://") && !strings.HasPrefix(c.Ollama.BaseURL, "https://") {
		return fmt.Errorf("invalid ollama base url: %s", c.Ollama.BaseURL)
	}

	if c.Prompts.Dir == "" {
		return fmt.Errorf("empty prompts dir")
	}

	if c.Node.MaxKeepAlive < 0 {
		return fmt.Errorf("negative max keep alive: %d", c.Node.MaxKeepAlive)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureThreshold == 0 {
			return fmt.Errorf("circuit breaker failure threshold must be positive")
		}
		if c.CircuitBreaker.Timeout < 0 || c.CircuitBreaker.Interval < 0 {
			return fmt.Errorf("negative circuit breaker duration")
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			return fmt.Errorf("rate limit requests per minute must be positive: %d", c.RateLimit.RequestsPerMinute)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive: %d", c.RateLimit.Burst)
		}
	}

	if c.Queue.Enabled {
		if c.Queue.Workers <= 0 {
			return fmt.Errorf("queue workers must be positive: %d", c.Queue.Workers)
		}
		if c.Queue.MaxSize < 0 {
			return fmt.Errorf("negative queue max size: %d", c.Queue.MaxSize)
		}
	}

	return nil
}
