package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"", "info", false},
		{"debug", "debug", false},
		{"WARN", "warn", false},
		{"verbose", "", true},
	}
	for _, tt := range tests {
		lvl, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil || lvl.String() != tt.expected {
			t.Errorf("%q: expected %s, got %s (%v)", tt.in, tt.expected, lvl, err)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if err := (Config{Level: "off"}).Validate(); err != nil {
		t.Errorf("off should validate: %v", err)
	}
	if err := (Config{Level: "info", Format: "xml"}).Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNew_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phantom.log")
	log, atom, err := New(Config{Level: "info", Format: FormatJSON, Output: path})
	if err != nil {
		t.Fatal(err)
	}

	log.Debug("hidden")
	log.Info("servo loop started", zap.Uint32("rate_hz", 1000))
	atom.SetLevel(zap.DebugLevel)
	log.Debug("now visible")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("debug entry logged at info level")
	}
	if !strings.Contains(out, `"rate_hz":1000`) || !strings.Contains(out, "now visible") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestNew_Off(t *testing.T) {
	log, _, err := New(Config{Level: "off"})
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zap.ErrorLevel) {
		t.Error("off logger should drop everything")
	}
}
