package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/server"
)

func main() {
	// Environment first, so ${VAR} references in config.yaml resolve.
	_ = godotenv.Load()

	configPath := "config.yaml"
	if p := os.Getenv("OLLAMANODE_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		if !stderrors.Is(err, os.ErrNotExist) {
			fmt.Printf("Critical error: Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = config.DefaultConfig()
	}

	// Create logger with explicit error handling
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		// Fail fast if logger creation fails
		fmt.Printf("Critical error: Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Ensure logger is synced, with robust error handling
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Warning: Failed to sync logger: %v\n", syncErr)
		}
	}()

	// Set global logger
	errors.SetLogger(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("Server initialization failed",
			zap.Error(err),
			zap.String("config_path", configPath),
		)
	}

	// Graceful shutdown infrastructure
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			zap.String("signal", sig.String()),
			zap.String("action", "initiating graceful shutdown"),
		)
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server startup or runtime error",
			zap.Error(err),
			zap.String("action", "server_start_failed"),
		)
	}
}
