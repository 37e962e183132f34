package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/diogo/recallchat/internal/config"
)

// newTUILogger logs to the log file when verbose, since the TUI owns the
// terminal. The returned close func is never nil.
func newTUILogger(cfg config.Config) (*slog.Logger, func(), error) {
	if !cfg.Verbose {
		return discardLogger(), func() {}, nil
	}

	if _, err := config.EnsureConfigDir(); err != nil {
		return nil, nil, err
	}
	path, err := config.GetLogPath()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

// newCLILogger logs debug output to w when verbose.
func newCLILogger(cfg config.Config, w io.Writer) *slog.Logger {
	if !cfg.Verbose {
		return discardLogger()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newServerLogger logs to w at the named level.
func newServerLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
