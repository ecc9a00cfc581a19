package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/couchcryptid/flood-risk-service/internal/config"
)

// NewLogger builds the service logger from config: JSON or text on stderr,
// plus a JSON copy to LOG_FILE when set. The returned func closes the file.
func NewLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	level := ParseLevel(cfg.LogLevel)

	if cfg.LogFile == "" {
		return NewLoggerWithWriters(os.Stderr, nil, cfg.LogFormat, level), func() error { return nil }, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewLoggerWithWriters(os.Stderr, file, cfg.LogFormat, level), file.Close, nil
}

// NewLoggerWithWriters creates a logger writing to out in the given format
// and, when file is non-nil, fanning out JSON records to file.
func NewLoggerWithWriters(out, file io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var primary slog.Handler
	if format == "text" {
		primary = slog.NewTextHandler(out, opts)
	} else {
		primary = slog.NewJSONHandler(out, opts)
	}

	if file == nil {
		return slog.New(primary)
	}
	return slog.New(slogmulti.Fanout(primary, slog.NewJSONHandler(file, opts)))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
