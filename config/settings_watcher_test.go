package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSettingsWatcherReloadsURL(t *testing.T) {
	path := writeSettings(t, `{"OLLAMA_URL": "http://first:11434"}`)

	sw, err := NewSettingsWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer sw.Close()

	assert.Equal(t, "http://first:11434", sw.BaseURL())

	updates := sw.Subscribe()
	require.NoError(t, UpdateKey(path, URLKey, "http://second:11434"))

	assert.Eventually(t, func() bool {
		return sw.BaseURL() == "http://second:11434"
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case url := <-updates:
		assert.Equal(t, "http://second:11434", url)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscriber notification")
	}
}

func TestSettingsWatcherMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)

	sw, err := NewSettingsWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer sw.Close()

	assert.Equal(t, DefaultBaseURL, sw.BaseURL())

	updates := sw.Subscribe()
	require.NoError(t, UpdateKey(path, URLKey, "http://created:11434"))

	assert.Eventually(t, func() bool {
		return sw.BaseURL() == "http://created:11434"
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case url := <-updates:
		assert.Equal(t, "http://created:11434", url)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscriber notification")
	}
}

func TestSettingsWatcherClose(t *testing.T) {
	path := writeSettings(t, `{}`)

	sw, err := NewSettingsWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	updates := sw.Subscribe()
	require.NoError(t, sw.Close())
	require.NoError(t, sw.Close(), "Close is idempotent")

	_, ok := <-updates
	assert.False(t, ok, "subscriber channels are closed")
}

func TestNewSettingsWatcherBadDir(t *testing.T) {
	_, err := NewSettingsWatcher(filepath.Join(t.TempDir(), "nope", "deeper", SettingsFileName), zaptest.NewLogger(t))
	assert.Error(t, err)
}
