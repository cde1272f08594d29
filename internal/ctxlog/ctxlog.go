// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type loggerKey struct{}

// DefaultLogger is the pretty console logger used when a context carries no
// logger. It writes to stderr so that diagnostics never mix with command
// output or the live status line on stdout.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger emits machine-readable records to stderr. It is selected by
// setting the <EXECUTABLE>_LOG_JSON environment variable.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

// LevelVar holds the process-wide log level. It is initialized from the
// environment in package init() and may be raised or lowered at runtime.
var LevelVar = &slog.LevelVar{}

func init() {
	// Set the default log level based on the environment variable
	LevelVar.Set(logLevelFromEnv())
}

// New creates a new context with the given logger.
// If logger is nil, it uses the default logger.
// The log level is set based on the environment variable.
// The variable name for the log level is derived from the executable name.
// For example, if the executable is named "stressy", the environment variable
// for the log level would be "STRESSY_LOG_LEVEL". The log level can be set to
// "DEBUG", "INFO", "WARN", "ERROR", or any other value will default to "WARN".
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// NewBuffered returns a logger that records into the returned buffer instead
// of writing to the terminal. Used while the interactive UI owns the screen;
// the caller flushes the buffer once the UI has quit.
func NewBuffered() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: LevelVar,
	}))

	return logger, buf
}

// FromEnv returns DefaultLogger or JSONLogger depending on whether the
// <EXECUTABLE>_LOG_JSON environment variable is set to a non-empty value.
func FromEnv() *slog.Logger {
	if os.Getenv(envVarName("_LOG_JSON")) != "" {
		return JSONLogger
	}

	return DefaultLogger
}

func logLevelFromEnv() slog.Level {
	return parseLogLevel(os.Getenv(envVarName("_LOG_LEVEL")))
}

// envVarName derives an environment variable name from the executable name,
// e.g. "stressy" and "_LOG_LEVEL" become "STRESSY_LOG_LEVEL".
func envVarName(suffix string) string {
	exec, _ := os.Executable()
	exec = filepath.Base(exec)
	ext := filepath.Ext(exec)

	if ext == ".exe" {
		exec = exec[:len(exec)-len(ext)]
	}

	return strings.ToUpper(exec) + suffix
}

func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
