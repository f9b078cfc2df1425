// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// =============================================================================
// LOGGER CONSTRUCTION
// =============================================================================

// Options controls logger construction.
type Options struct {
	// FilePath is the log file location.
	// Default: ~/.linguatax/linguatax.log
	FilePath string

	// Debug lowers the level from Info to Debug.
	Debug bool
}

// New creates the application logger writing JSON to a rotated file.
func New(opts Options) (*zap.Logger, error) {
	path := opts.FilePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".linguatax", "linguatax.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.MessageKey = "message"
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(rotator),
		level,
	)

	return zap.New(core, zap.AddCaller()), nil
}

// Nop returns a logger that discards everything. Used by tests and as a
// safe default when a component is constructed without a logger.
func Nop() *zap.Logger {
	return zap.NewNop()
}
