package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  log.Level
	}{
		{"debug", "debug", log.DebugLevel},
		{"info", "info", log.InfoLevel},
		{"warn", "warn", log.WarnLevel},
		{"warning", "warning", log.WarnLevel},
		{"error", "error", log.ErrorLevel},
		{"mixed case", " WARN ", log.WarnLevel},
		{"unknown defaults to info", "loud", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(&buf, Options{Level: "warn"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "op", "list")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "op=list") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, "taskflow") {
		t.Errorf("default prefix missing: %q", out)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskflow.log")
	var buf bytes.Buffer
	logger, closer, err := New(&buf, Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("default writer used despite File: %q", buf.String())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Errorf("log file = %q", b)
	}
}

func TestNewPrefixAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(&buf, Options{Level: "info", Prefix: "taskflow-tui", ReportTimestamp: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("ready")

	out := buf.String()
	if !strings.Contains(out, "taskflow-tui") {
		t.Errorf("custom prefix missing: %q", out)
	}
	if !strings.Contains(out, time.Now().Format("2006/01/02")) {
		t.Errorf("timestamp missing: %q", out)
	}
}
