package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantmerge.log")

	logger := New(Options{File: path})
	logger.Info("session created")
	Sync(logger)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "session created") {
		t.Errorf("Expected log file to contain message, got %q", string(data))
	}
	if !strings.Contains(string(data), "INFO") {
		t.Errorf("Expected capital level in output, got %q", string(data))
	}
}

func TestNew_DebugLevel(t *testing.T) {
	dir := t.TempDir()

	quiet := New(Options{File: filepath.Join(dir, "info.log")})
	quiet.Debug("hidden")
	Sync(quiet)

	verbose := New(Options{File: filepath.Join(dir, "debug.log"), Debug: true})
	verbose.Debug("shown")
	Sync(verbose)

	info, _ := os.ReadFile(filepath.Join(dir, "info.log"))
	if strings.Contains(string(info), "hidden") {
		t.Error("Expected debug entry to be filtered at info level")
	}
	debug, _ := os.ReadFile(filepath.Join(dir, "debug.log"))
	if !strings.Contains(string(debug), "shown") {
		t.Error("Expected debug entry at debug level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("Expected a usable logger")
	}
	l := New(Options{})
	if OrNop(l) != l {
		t.Error("Expected the given logger to be returned")
	}
}
