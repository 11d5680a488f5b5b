// Package server exposes the node over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/node"
	"github.com/teilomillet/ollamanode/ollama"
	"github.com/teilomillet/ollamanode/server/handlers"
	"github.com/teilomillet/ollamanode/server/metrics"
)

// Server represents the HTTP server and everything behind it.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	node            *node.Node
	urls            config.URLSource
	watcher         config.Watcher
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewServer loads the YAML configuration at configPath and builds a server
// from it.
func NewServer(configPath string, logger *zap.Logger) (*Server, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger)
}

// New builds a server from cfg.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		metrics:         metrics.NewMetrics(),
		logger:          logger,
	}

	urls, watcher, err := NewURLSource(cfg.Ollama, logger)
	if err != nil {
		return nil, err
	}
	s.urls, s.watcher = urls, watcher

	n := NewNode(cfg, urls, s.metrics, logger)
	s.node = n

	h := handlers.NewNodeHandler(n, s.metrics, logger)
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        NewRouter(h, s.metrics, cfg, logger),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	return s, nil
}

// NewURLSource picks where the Ollama base URL comes from: the configured
// base_url when set, otherwise the settings file, watched for changes when
// watch_settings is on. The returned watcher is nil unless one was started.
func NewURLSource(cfg config.OllamaConfig, logger *zap.Logger) (config.URLSource, config.Watcher, error) {
	if cfg.BaseURL != "" {
		return config.StaticURL(cfg.BaseURL), nil, nil
	}

	path := cfg.SettingsPath
	if path == "" {
		path = config.DefaultSettingsPath()
	}

	if !cfg.WatchSettings {
		return config.StaticURL(config.ResolveBaseURL(path)), nil, nil
	}

	w, err := config.NewSettingsWatcher(path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("watch settings: %w", err)
	}
	return w, w, nil
}

// NewNode wires an Ollama client, discovery and the optional breaker into a
// node. m may be nil; the breaker gauge is then not exported.
func NewNode(cfg *config.Config, urls config.URLSource, m *metrics.Metrics, logger *zap.Logger) *node.Node {
	opts := []ollama.Option{
		ollama.WithTimeout(cfg.Ollama.RequestTimeout),
		ollama.WithLogger(logger.Named("ollama")),
	}
	if cfg.CircuitBreaker.Enabled {
		var registry prometheus.Registerer
		if m != nil {
			registry = m.Registry()
		}
		opts = append(opts, ollama.WithBreaker(ollama.NewBreaker(cfg.CircuitBreaker, logger, registry)))
	}

	client := ollama.NewClient(urls, opts...)
	discovery := ollama.NewDiscovery(client, cfg.Ollama.FallbackModel, logger.Named("discovery"))
	return node.New(client, discovery, node.OptionsFromConfig(cfg), logger.Named("node"))
}

// Node returns the node behind the server.
func (s *Server) Node() *node.Node {
	return s.node
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Close stops the settings watcher, if any.
func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Start starts the server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	if s.watcher != nil {
		go s.logURLChanges(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Server started",
			zap.String("address", s.httpServer.Addr),
			zap.String("ollama_url", s.urls.BaseURL()),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		timeout := s.shutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("Shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

func (s *Server) logURLChanges(ctx context.Context) {
	updates := s.watcher.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case url, ok := <-updates:
			if !ok {
				return
			}
			s.logger.Info("ollama url changed", zap.String("ollama_url", url))
		}
	}
}
