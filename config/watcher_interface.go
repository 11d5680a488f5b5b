package config

// URLSource provides the current Ollama base URL.
type URLSource interface {
	BaseURL() string
}

// StaticURL is a URLSource that never changes.
type StaticURL string

// BaseURL implements URLSource
func (s StaticURL) BaseURL() string {
	return string(s)
}

// Watcher defines the behavior we expect from any settings watcher
type Watcher interface {
	URLSource
	Subscribe() <-chan string
	Close() error
}
