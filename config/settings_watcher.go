package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Verify at compile time that SettingsWatcher implements Watcher
var _ Watcher = (*SettingsWatcher)(nil)

// SettingsWatcher keeps OLLAMA_URL current while the settings file changes.
// It watches the parent directory so the file may be created, replaced or
// removed after the watcher starts.
type SettingsWatcher struct {
	currentURL atomic.Value
	path       string
	watcher    *fsnotify.Watcher
	logger     *zap.Logger

	mu          sync.Mutex
	subscribers []chan string
	closeOnce   sync.Once
}

// NewSettingsWatcher resolves the initial URL and starts watching path.
func NewSettingsWatcher(path string, logger *zap.Logger) (*SettingsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	sw := &SettingsWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		logger:  logger,
	}
	sw.currentURL.Store(ResolveBaseURL(sw.path))

	if err := watcher.Add(filepath.Dir(sw.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch settings dir: %w", err)
	}

	go sw.watch()
	return sw, nil
}

// BaseURL returns the current URL thread-safely
func (sw *SettingsWatcher) BaseURL() string {
	return sw.currentURL.Load().(string)
}

// Subscribe allows components to receive URL changes
func (sw *SettingsWatcher) Subscribe() <-chan string {
	ch := make(chan string, 1)
	sw.mu.Lock()
	sw.subscribers = append(sw.subscribers, ch)
	sw.mu.Unlock()
	return ch
}

func (sw *SettingsWatcher) watch() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				sw.reload()
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Error("Settings watcher error", zap.Error(err))
		}
	}
}

func (sw *SettingsWatcher) reload() {
	url := ResolveBaseURL(sw.path)
	if url == sw.BaseURL() {
		return
	}

	sw.currentURL.Store(url)
	sw.logger.Info("Ollama URL reloaded",
		zap.String("path", sw.path),
		zap.String("url", url),
	)

	sw.mu.Lock()
	defer sw.mu.Unlock()
	for _, sub := range sw.subscribers {
		select {
		case sub <- url:
		default:
			// Skip if subscriber is not ready
		}
	}
}

// Close stops watching and closes all subscriber channels.
func (sw *SettingsWatcher) Close() error {
	var err error
	sw.closeOnce.Do(func() {
		err = sw.watcher.Close()
		sw.mu.Lock()
		for _, sub := range sw.subscribers {
			close(sub)
		}
		sw.subscribers = nil
		sw.mu.Unlock()
	})
	return err
}
