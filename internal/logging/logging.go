// Package logging builds the slog logger of a run. Records go to stderr
// and, when a log directory is configured, to a timestamped file that
// lumberjack rotates.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction
type Config struct {
	Level  string // debug, info, warn or error
	Format string // text or json
	Dir    string // empty disables the log file
	// Console receives the records besides the file; stderr when nil
	Console io.Writer
	Now     func() time.Time
}

// Logger wraps the slog logger together with its log file
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// New creates the logger and installs it as the slog default
func New(cfg Config) (*Logger, error) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	out := console
	var file *lumberjack.Logger
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, FileName(now())),
			MaxSize:    50,
			MaxBackups: 10,
		}
		out = io.MultiWriter(console, file)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return &Logger{Logger: logger, file: file}, nil
}

// FilePath returns the log file path, empty without a log directory
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Filename
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FileName returns the log file name for a run started at t
func FileName(t time.Time) string {
	return "wordhoard_" + t.Format("20060102_150405") + ".log"
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
