package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init builds the process logger. JSON output is used in production or when
// format is "json"; level falls back to debug outside production.
func Init(env string, opts ...Option) {
	o := options{level: slog.LevelDebug}
	if env == "production" {
		o.level = slog.LevelInfo
		o.json = true
	}
	for _, opt := range opts {
		opt(&o)
	}

	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: o.level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: o.level})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

type options struct {
	level slog.Level
	json  bool
}

type Option func(*options)

// WithLevel accepts debug, info, warn or error. Unknown values are ignored.
func WithLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(level) {
		case "debug":
			o.level = slog.LevelDebug
		case "info":
			o.level = slog.LevelInfo
		case "warn":
			o.level = slog.LevelWarn
		case "error":
			o.level = slog.LevelError
		}
	}
}

func WithFormat(format string) Option {
	return func(o *options) {
		switch strings.ToLower(format) {
		case "json":
			o.json = true
		case "text":
			o.json = false
		}
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// Discard returns a logger that drops everything, handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
