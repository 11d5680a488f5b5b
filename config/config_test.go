package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	yamlConfig := `
server:
  port: 9090
  read_timeout: 45s
  write_timeout: 5m
  max_header_bytes: 2097152
  shutdown_timeout: 45s

ollama:
  base_url: http://gpu-box:11434
  request_timeout: 2m
  fallback_model: llama2

prompts:
  dir: /srv/prompts

node:
  default_model: llava:13b
  image_prompt_prefix: false

logging:
  level: debug
  format: text

circuit_breaker:
  enabled: true
  failure_threshold: 3
`

	config, err := Load(strings.NewReader(yamlConfig))
	if err != nil {
		t.Fatalf("Failed to load valid config: %v", err)
	}

	if config.Server.Port != 9090 {
		t.Errorf("unexpected port: got %d, want %d", config.Server.Port, 9090)
	}
	if config.Server.WriteTimeout != 5*time.Minute {
		t.Errorf("unexpected write timeout: got %v, want %v", config.Server.WriteTimeout, 5*time.Minute)
	}

	if config.Ollama.BaseURL != "http://gpu-box:11434" {
		t.Errorf("unexpected base url: got %s", config.Ollama.BaseURL)
	}
	if config.Ollama.RequestTimeout != 2*time.Minute {
		t.Errorf("unexpected request timeout: got %v", config.Ollama.RequestTimeout)
	}
	if config.Ollama.FallbackModel != "llama2" {
		t.Errorf("unexpected fallback model: got %s", config.Ollama.FallbackModel)
	}
	if !config.Ollama.WatchSettings {
		t.Error("watch_settings should keep its default when omitted")
	}

	if config.Prompts.Dir != "/srv/prompts" {
		t.Errorf("unexpected prompts dir: got %s", config.Prompts.Dir)
	}
	if config.Node.DefaultModel != "llava:13b" {
		t.Errorf("unexpected default model: got %s", config.Node.DefaultModel)
	}
	if config.Node.ImagePromptPrefix {
		t.Error("image_prompt_prefix should be disabled")
	}
	if config.Node.MaxKeepAlive != 60 {
		t.Errorf("unexpected max keep alive: got %d, want 60", config.Node.MaxKeepAlive)
	}

	if config.Logging.Level != "debug" || config.Logging.Format != "text" {
		t.Errorf("unexpected logging config: %+v", config.Logging)
	}

	if !config.CircuitBreaker.Enabled || config.CircuitBreaker.FailureThreshold != 3 {
		t.Errorf("unexpected circuit breaker config: %+v", config.CircuitBreaker)
	}
	if config.CircuitBreaker.Timeout != 30*time.Second {
		t.Errorf("circuit breaker timeout should keep its default, got %v", config.CircuitBreaker.Timeout)
	}
}

func TestLoadEmptyConfig(t *testing.T) {
	config, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty config should load defaults: %v", err)
	}
	if config.Server.Port != 8188 {
		t.Errorf("unexpected port: got %d, want %d", config.Server.Port, 8188)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{
			name: "invalid port",
			config: `
server:
  port: -1
`,
			want: "invalid port",
		},
		{
			name: "invalid log level",
			config: `
logging:
  level: invalid
`,
			want: "invalid log level",
		},
		{
			name: "invalid log format",
			config: `
logging:
  format: xml
`,
			want: "invalid log format",
		},
		{
			name: "empty prompts dir",
			config: `
prompts:
  dir: ""
`,
			want: "empty prompts dir",
		},
		{
			name: "base url without scheme",
			config: `
ollama:
  base_url: localhost:11434
`,
			want: "invalid ollama base url",
		},
		{
			name: "negative request timeout",
			config: `
ollama:
  request_timeout: -1s
`,
			want: "negative ollama request timeout",
		},
		{
			name: "breaker without threshold",
			config: `
circuit_breaker:
  enabled: true
  failure_threshold: 0
`,
			want: "failure threshold",
		},
		{
			name: "rate limit without rate",
			config: `
rate_limit:
  enabled: true
  requests_per_minute: 0
`,
			want: "requests per minute",
		},
		{
			name: "queue without workers",
			config: `
queue:
  enabled: true
  workers: 0
`,
			want: "queue workers",
		},
		{
			name:   "malformed yaml",
			config: "server: [",
			want:   "decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.config))
			if err == nil {
				t.Error("expected error, got nil")
			} else if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("unexpected error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if config.Ollama.BaseURL != "" {
		t.Errorf("default base url should defer to the settings file, got %s", config.Ollama.BaseURL)
	}
	if config.Ollama.RequestTimeout != 0 {
		t.Errorf("default request timeout should be unbounded, got %v", config.Ollama.RequestTimeout)
	}
	if config.Ollama.FallbackModel != "" {
		t.Errorf("default fallback model should be empty, got %s", config.Ollama.FallbackModel)
	}
	if config.Prompts.Dir != "prompts" {
		t.Errorf("unexpected default prompts dir: got %s", config.Prompts.Dir)
	}
	if !config.Node.ImagePromptPrefix {
		t.Error("image prompt prefix should be enabled by default")
	}
	if config.CircuitBreaker.Enabled {
		t.Error("circuit breaker should be disabled by default")
	}
	if config.Queue.Enabled || config.Queue.Workers != 1 {
		t.Errorf("unexpected default queue: %+v", config.Queue)
	}
	if config.Logging.Level != "info" || config.Logging.Format != "json" {
		t.Errorf("unexpected default logging: %+v", config.Logging)
	}
}

func TestLoggingConfigNewLogger(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		logger, err := LoggingConfig{Level: "warn", Format: format}.NewLogger()
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		if logger.Core().Enabled(-1) {
			t.Errorf("format %s: debug should be disabled at warn level", format)
		}
	}

	if _, err := (LoggingConfig{Level: "loud", Format: "json"}).NewLogger(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestExampleConfigLoads(t *testing.T) {
	config, err := LoadFile("../config.example.yaml")
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if !config.Queue.Enabled || config.Queue.Workers != 1 {
		t.Errorf("unexpected example queue config: %+v", config.Queue)
	}
}
