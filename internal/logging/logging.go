// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// New returns a logger for cfg. Format "console" selects zap's development
// encoder; anything else logs JSON. Logs go to stderr so command output on
// stdout stays machine-readable.
func New(cfg types.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "", "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q: use json or console", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
