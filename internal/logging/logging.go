// Package logging provides the zap loggers used across studyboard.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper of zap.SugaredLogger.
type Logger = *zap.SugaredLogger

var (
	defaultLogger Logger
	logLevel      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerOnce    sync.Once
)

// SetLogLevel sets the level of every logger with ["debug", "info", "warn", "error"].
func SetLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logLevel.SetLevel(zapcore.DebugLevel)
	case "", "info":
		logLevel.SetLevel(zapcore.InfoLevel)
	case "warn":
		logLevel.SetLevel(zapcore.WarnLevel)
	case "error":
		logLevel.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}

// New creates a named logger.
func New(name string) Logger {
	return DefaultLogger().Named(name)
}

// DefaultLogger returns the process-wide root logger.
func DefaultLogger() Logger {
	loggerOnce.Do(func() {
		defaultLogger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(os.Stderr),
			logLevel,
		)).Sugar()
	})
	return defaultLogger
}

// Nop returns a logger that discards everything; handy in tests.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}
