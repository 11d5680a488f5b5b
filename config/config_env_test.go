package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironmentVariableExpansion tests various scenarios of environment variable expansion
func TestEnvironmentVariableExpansion(t *testing.T) {
	testCases := []struct {
		name       string
		envVars    map[string]string
		yamlConfig string
		validate   func(*testing.T, *Config)
	}{
		{
			name: "basic env var expansion",
			envVars: map[string]string{
				"OLLAMA_HOST_URL": "http://10.0.0.7:11434",
			},
			yamlConfig: `
ollama:
    base_url: ${OLLAMA_HOST_URL}`,
			validate: func(t *testing.T, c *Config) {
				if c.Ollama.BaseURL != "http://10.0.0.7:11434" {
					t.Errorf("base url not expanded correctly, got %s", c.Ollama.BaseURL)
				}
			},
		},
		{
			name:    "missing env var",
			envVars: map[string]string{},
			yamlConfig: `
node:
    default_model: ${MISSING_MODEL_NAME}`,
			validate: func(t *testing.T, c *Config) {
				if c.Node.DefaultModel != "" {
					t.Errorf("Missing env var should expand to empty string, got %s", c.Node.DefaultModel)
				}
			},
		},
		{
			name:    "default value syntax",
			envVars: map[string]string{},
			yamlConfig: `
prompts:
    dir: ${PROMPTS_DIR_UNSET:-/opt/prompts}`,
			validate: func(t *testing.T, c *Config) {
				if c.Prompts.Dir != "/opt/prompts" {
					t.Errorf("default value not applied, got %s", c.Prompts.Dir)
				}
			},
		},
		{
			name: "multiple env vars in single value",
			envVars: map[string]string{
				"OLLAMA_TEST_HOST": "gpu-box",
				"OLLAMA_TEST_PORT": "11434",
			},
			yamlConfig: `
ollama:
    base_url: http://${OLLAMA_TEST_HOST}:${OLLAMA_TEST_PORT}`,
			validate: func(t *testing.T, c *Config) {
				expected := "http://gpu-box:11434"
				if c.Ollama.BaseURL != expected {
					t.Errorf("Multiple env vars not expanded correctly, got %s, want %s",
						c.Ollama.BaseURL, expected)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(strings.NewReader(tc.yamlConfig))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.validate(t, cfg)
		})
	}
}

func TestLoadFileWithEnv(t *testing.T) {
	t.Setenv("NODE_TEST_PORT", "9191")

	path := filepath.Join(t.TempDir(), "ollamanode.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: ${NODE_TEST_PORT}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("unexpected port: got %d, want 9191", cfg.Server.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
