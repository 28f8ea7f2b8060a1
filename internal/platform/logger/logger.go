package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/learnpath/internal/config"
)

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured logger writing to
// stdout and sets it as the default logger for the application.
func Setup(cfg config.LogConfig) (*slog.Logger, error) {
	return New(os.Stdout, cfg), nil
}

// New builds a logger writing to out and installs it as the slog default.
// Unknown levels fall back to info; any format other than "text" is JSON.
func New(out io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a case-insensitive level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
