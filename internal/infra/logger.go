package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a JSON slog.Logger writing to stdout and a rotated file
// under logs/. Falls back to stderr when the log directory cannot be created.
func NewLogger(cfg *Config) *slog.Logger {
	const logDir = "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "mmprofiler.log"),
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     28, // Days
		Compress:   true,
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Logging.Level)}
	return slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotated), opts))
}

func parseLevel(level string) slog.Level {
	switch level {
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
