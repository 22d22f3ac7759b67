package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: text to console, JSON to file.
// A nil console logs to the file only, which keeps full-screen terminal
// views clean. Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level, console io.Writer) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if console == nil {
			console = os.Stderr
		}
		slog.Error("failed to open log file, using console only", "error", err, "file", logFile)
		return slog.New(slog.NewTextHandler(console, opts)), func() error { return nil }
	}

	logger := SetupLoggerWithWriters(console, file, level)
	return logger, file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	fileHandler := slog.NewJSONHandler(file, opts)
	if console == nil {
		return slog.New(fileHandler)
	}
	return slog.New(slogmulti.Fanout(slog.NewTextHandler(console, opts), fileHandler))
}
