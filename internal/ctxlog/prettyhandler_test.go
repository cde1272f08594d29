// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	tests := []struct {
		name    string
		options *slog.HandlerOptions
		opts    []Option
	}{
		{
			name:    "with nil options",
			options: nil,
			opts:    []Option{},
		},
		{
			name: "with custom options",
			options: &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			},
			opts: []Option{},
		},
		{
			name:    "with functional options",
			options: &slog.HandlerOptions{},
			opts: []Option{
				WithColour(),
				WithOutputEmptyAttrs(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(tt.options, tt.opts...)

			require.NotNil(t, handler)
			assert.NotNil(t, handler.h, "inner handler must be set")
			assert.NotNil(t, handler.b, "buffer must be set")
			assert.NotNil(t, handler.m, "mutex must be set")
			assert.NotNil(t, handler.jf, "attribute formatter must be set")
		})
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		options *slog.HandlerOptions
		want    bool
	}{
		{
			name:    "debug level with debug handler",
			level:   slog.LevelDebug,
			options: &slog.HandlerOptions{Level: slog.LevelDebug},
			want:    true,
		},
		{
			name:    "debug level with info handler",
			level:   slog.LevelDebug,
			options: &slog.HandlerOptions{Level: slog.LevelInfo},
			want:    false,
		},
		{
			name:    "error level with warn handler",
			level:   slog.LevelError,
			options: &slog.HandlerOptions{Level: slog.LevelWarn},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(tt.options)
			assert.Equal(t, tt.want, handler.Enabled(context.Background(), tt.level))
		})
	}
}

func TestPrettyHandlerWithAttrsAndGroupShareState(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{})

	withAttrs, ok := handler.WithAttrs([]slog.Attr{slog.String("key1", "value1")}).(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withAttrs.b, "WithAttrs should share the buffer")
	assert.Same(t, handler.m, withAttrs.m, "WithAttrs should share the mutex")

	withGroup, ok := handler.WithGroup("group").(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withGroup.b, "WithGroup should share the buffer")
	assert.Same(t, handler.m, withGroup.m, "WithGroup should share the mutex")
}

func TestPrettyHandlerHandle(t *testing.T) {
	tests := []struct {
		name           string
		level          slog.Level
		message        string
		attrs          []any
		options        []Option
		expectInOutput []string
	}{
		{
			name:           "basic info message",
			level:          slog.LevelInfo,
			message:        "test message",
			attrs:          []any{},
			expectInOutput: []string{"INFO:", "test message"},
		},
		{
			name:           "debug message with attributes",
			level:          slog.LevelDebug,
			message:        "debug message",
			attrs:          []any{"key", "value", "number", 42},
			expectInOutput: []string{"DEBUG:", "debug message", "key", "value", "42"},
		},
		{
			name:           "error message",
			level:          slog.LevelError,
			message:        "error message",
			attrs:          []any{},
			expectInOutput: []string{"ERROR:", "error message"},
		},
		{
			name:           "empty attrs output enabled",
			level:          slog.LevelInfo,
			message:        "test message",
			attrs:          []any{},
			options:        []Option{WithOutputEmptyAttrs()},
			expectInOutput: []string{"INFO:", "test message", "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			opts := append([]Option{WithDestinationWriter(&buf)}, tt.options...)
			handler := NewPrettyHandler(&slog.HandlerOptions{
				Level: slog.LevelDebug,
			}, opts...)

			record := slog.NewRecord(time.Now(), tt.level, tt.message, 0)
			record.Add(tt.attrs...)

			require.NoError(t, handler.Handle(context.Background(), record))

			output := buf.String()
			for _, expected := range tt.expectInOutput {
				assert.Contains(t, output, expected)
			}

			assert.True(t, len(output) > 0 && output[len(output)-1] == '\n', "output should end with newline")
		})
	}
}

func TestPrettyHandlerHandleWithReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	replaceAttr := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}

		if a.Key == "secret" {
			return slog.String("secret", "[REDACTED]")
		}

		return a
	}

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	}, WithDestinationWriter(&buf))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
	record.Add("secret", "password123", "public", "data")

	require.NoError(t, handler.Handle(context.Background(), record))

	output := buf.String()
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, "password123")
	assert.Contains(t, output, "public")
}

func TestPrettyHandlerComputeAttrsError(t *testing.T) {
	handler := &PrettyHandler{
		h: &failingHandler{},
		b: &bytes.Buffer{},
		m: &sync.Mutex{},
	}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test", 0)
	_, err := handler.computeAttrs(context.Background(), record)

	assert.Error(t, err, "computeAttrs should fail when the inner handler fails")
}

func TestPrettyHandlerHandleWriteError(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelDebug,
	}, WithDestinationWriter(&failingWriter{}))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
	err := handler.Handle(context.Background(), record)

	assert.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyHandlerLevelColors(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelDebug,
	}, WithDestinationWriter(&buf), WithColour())

	levels := []slog.Level{
		slog.LevelDebug,
		slog.LevelInfo,
		slog.LevelWarn,
		slog.LevelError,
		slog.LevelError + 2,
	}

	for _, level := range levels {
		buf.Reset()

		record := slog.NewRecord(time.Now(), level, "test message", 0)
		require.NoError(t, handler.Handle(context.Background(), record))
		assert.NotEmpty(t, buf.String(), "no output for level %v", level)
	}
}

func TestSuppressDefaults(t *testing.T) {
	suppressFunc := suppressDefaults(nil)

	tests := []struct {
		name string
		attr slog.Attr
		want slog.Attr
	}{
		{
			name: "time key should be suppressed",
			attr: slog.Time(slog.TimeKey, time.Now()),
			want: slog.Attr{},
		},
		{
			name: "level key should be suppressed",
			attr: slog.Any(slog.LevelKey, slog.LevelInfo),
			want: slog.Attr{},
		},
		{
			name: "message key should be suppressed",
			attr: slog.String(slog.MessageKey, "test"),
			want: slog.Attr{},
		},
		{
			name: "custom key should not be suppressed",
			attr: slog.String("custom", "value"),
			want: slog.String("custom", "value"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suppressFunc([]string{}, tt.attr)
			assert.True(t, got.Equal(tt.want), "suppressDefaults() = %v, want %v", got, tt.want)
		})
	}
}

// Helper types for testing

type failingHandler struct{}

func (h *failingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *failingHandler) Handle(ctx context.Context, r slog.Record) error {
	return errors.New("failing handler error")
}

func (h *failingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *failingHandler) WithGroup(name string) slog.Handler {
	return h
}

type failingWriter struct{}

func (w *failingWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
