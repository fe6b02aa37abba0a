// Package logger builds the structured slog loggers used by wasmdev.
// Everything is written as JSON to a rotating file so the terminal only
// shows the startup banner and tool output:
//
//	<logDir>/system.log
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// NewSystemLogger creates a JSON slog.Logger writing to <logDir>/system.log,
// rotated by size. The directory is created if it does not exist. The
// returned closer flushes and closes the log file.
func NewSystemLogger(logDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "system.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), w, nil
}

// NewConsoleLogger creates a text logger on w, used by --verbose.
func NewConsoleLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
