// Package logging builds the zap logger shared by every component.
package logging

import (
	"go.uber.org/zap"
)

// Config holds logging configuration.
type Config struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // "json" or "console"
	OutputPath  string `yaml:"output"`
	Development bool   `yaml:"development"`
}

// New builds a logger from config. An unparsable level falls back to info.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}
	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "envi")), nil
}

// Must is New for callers that cannot proceed without a logger; on failure
// it returns zap's production logger.
func Must(config Config) *zap.Logger {
	logger, err := New(config)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
