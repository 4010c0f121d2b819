package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level       string
		debugActive bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"nonsense", false}, // unknown names fall back to info
	}

	for _, test := range tests {
		logger := newLogger(test.level, "")
		if logger == nil {
			t.Fatalf("newLogger(%q) returned nil", test.level)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != test.debugActive {
			t.Errorf("level %q: debug enabled = %v, expected %v", test.level, got, test.debugActive)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("level %q: error logging must always be enabled", test.level)
		}
	}
}

func TestNewLoggerFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger := newLogger("info", path)
	logger.Info("cycle complete")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file was not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}
