package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultBaseURL is used whenever the settings file cannot provide OLLAMA_URL.
	DefaultBaseURL = "http://localhost:11434"

	// URLKey is the settings key holding the Ollama base URL.
	URLKey = "OLLAMA_URL"

	// SettingsFileName is the settings file looked up next to the executable.
	SettingsFileName = "config.json"
)

// DefaultSettingsPath returns config.json next to the running executable,
// or in the working directory when the executable path is unknown.
func DefaultSettingsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return SettingsFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), SettingsFileName)
}

// ResolveBaseURL reads OLLAMA_URL from the JSON object at path.
// A missing, unreadable or malformed file, or a missing or non-string key,
// yields DefaultBaseURL. It never fails and never writes.
func ResolveBaseURL(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultBaseURL
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultBaseURL
	}

	url, ok := settings[URLKey].(string)
	if !ok || url == "" {
		return DefaultBaseURL
	}
	return url
}

// UpdateKey sets key to value in the settings file at path, creating the file
// when missing. An empty or corrupt file is replaced by a fresh object.
func UpdateKey(path, key, value string) error {
	settings := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &settings); err != nil || settings == nil {
			settings = make(map[string]any)
		}
	}

	settings[key] = value

	out, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	// Write through a temp file so watchers never observe a partial document.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(out, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
