package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"user-pulse/internal/config"
)

var (
	singleton *slog.Logger
	once      sync.Once
)

// Init builds the process-wide logger from cfg and writes to stdout.
// The first call wins; later calls return the same instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton = New(cfg, os.Stdout)
		slog.SetDefault(singleton)
	})

	return singleton, nil
}

// New builds a logger for cfg that writes to w. Unknown formats fall back to JSON.
func New(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("app", "user-pulse")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the singleton logger instance.
// Before Init it returns slog.Default() so packages can log during tests.
func L() *slog.Logger {
	if singleton == nil {
		return slog.Default()
	}
	return singleton
}
