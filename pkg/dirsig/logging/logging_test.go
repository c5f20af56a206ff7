package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
		{"WARN", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestInitRejectsBadComponentLevel(t *testing.T) {
	err := Init(Config{Level: "info", Components: map[string]string{"store": "nope"}})
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestGetReturnsSameLogger(t *testing.T) {
	if Get("manifest") != Get("manifest") {
		t.Error("Get must return the same logger per component")
	}
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dirsig.log")
	if err := Init(Config{Level: "debug", Path: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() {
		_ = Close()
		_ = Init(Config{Level: "info"})
	}()

	Get("test").Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing message: %q", data)
	}
}
