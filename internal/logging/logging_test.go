package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesBracketedLineToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	logger, closer, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closer.Close()

	logger.Info("server started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file error = %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "[INFO] ") {
		t.Fatalf("expected line to start with [INFO], got %q", line)
	}
	if !strings.HasSuffix(line, "server started") {
		t.Fatalf("expected line to end with the message, got %q", line)
	}
}

func TestNewAppendsAcrossMultipleRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	logger, closer, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("first")
	logger.Warn("second")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") {
		t.Fatalf("unexpected log contents: %q", data)
	}
}

func TestNewReopensAndAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	logger, closer, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("before restart")
	closer.Close()

	logger, closer, err = New(path)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	logger.Info("after restart")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file error = %v", err)
	}
	if !strings.Contains(string(data), "before restart") || !strings.Contains(string(data), "after restart") {
		t.Fatalf("expected both records to survive reopen, got %q", data)
	}
}
