package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger from the logging section.
// The json format uses the production encoder, text the development console encoder.
func (c LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var zc zap.Config
	switch c.Format {
	case "text":
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	return zc.Build()
}
