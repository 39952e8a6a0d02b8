package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schemasmith/schemasmith/internal/config"
)

// Setup initializes the logger with file and stdout output.
func Setup(level, directory string) (*slog.Logger, error) {
	return setup(os.Stdout, level, directory, time.Now())
}

// SetupTo is Setup with console output sent to w instead of stdout.
func SetupTo(w io.Writer, level, directory string) (*slog.Logger, error) {
	return setup(w, level, directory, time.Now())
}

func setup(stdout io.Writer, level, directory string, now time.Time) (*slog.Logger, error) {
	if directory == "" {
		directory = "~/.schemasmith/logs/"
	}
	directory = config.ExpandHome(directory)

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(directory, FileName(now))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(stdout, file), &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler), nil
}

// FileName is the dated log file written on day t.
func FileName(t time.Time) string {
	return fmt.Sprintf("schemasmith-%s.log", t.Format("2006-01-02"))
}

// ParseLevel maps debug, info, warn and error to slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
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
