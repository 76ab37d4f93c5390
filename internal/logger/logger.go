// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logger configures the global zerolog logger from application
// configuration, with optional rotating file output.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/debrr/internal/domain"
)

var rotator *lumberjack.Logger

// Setup initializes the global logger. Console output is always on; a
// rotating log file is added when LogPath is set.
func Setup(cfg *domain.Config) {
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	var output io.Writer = console

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err == nil {
			maxSize := cfg.LogMaxSize
			if maxSize <= 0 {
				maxSize = 50
			}
			maxBackups := cfg.LogMaxBackups
			if maxBackups <= 0 {
				maxBackups = 3
			}

			rotator = &lumberjack.Logger{
				Filename:   cfg.LogPath,
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				LocalTime:  true,
			}
			output = io.MultiWriter(console, rotator)
		}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	if rotator != nil {
		return rotator.Close()
	}
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
