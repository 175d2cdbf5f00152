package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "bogus", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proclife.log")
	l := Setup(Config{Level: "debug", File: path})
	l.Info("hello", "k", "v")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("log file empty")
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	l := Setup(Config{NoColor: true})
	if l == nil {
		t.Fatal("nil logger")
	}
	if slog.Default() != l {
		t.Fatal("default logger not installed")
	}
}

func TestRotationDefaults(t *testing.T) {
	if valOr(0, DefaultMaxSizeMB) != DefaultMaxSizeMB {
		t.Fatal("zero should fall back to default")
	}
	if valOr(25, DefaultMaxSizeMB) != 25 {
		t.Fatal("explicit value lost")
	}
}
