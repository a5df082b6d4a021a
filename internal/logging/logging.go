// Package logging builds the leveled console logger shared by the CLI and TUI.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options holds configuration for a logger.
type Options struct {
	Level           string
	File            string // rotate into this file instead of the default writer
	ReportTimestamp bool
	Prefix          string
}

// ParseLevel maps a config string to a log level. Unknown input means info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New returns a text logger writing to w, or to a rotating file when
// opts.File is set. The returned closer releases the file; it is a no-op
// otherwise.
func New(w io.Writer, opts Options) (*log.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	timestamps := opts.ReportTimestamp
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w, closer = lj, lj
		timestamps = true
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "taskflow"
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       log.TextFormatter,
		ReportTimestamp: timestamps,
		Prefix:          prefix,
	})
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
