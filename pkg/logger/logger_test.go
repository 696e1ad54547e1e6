package logger

import (
	"path/filepath"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": DEBUG,
		"INFO":  INFO,
		" errOR ": ERROR,
	}
	for value, want := range cases {
		got, err := ParseLogLevel(value)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q) failed: %v", value, err)
		}
		if got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", value, got, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestEnabled(t *testing.T) {
	SetLogLevel(INFO)
	if Enabled(DEBUG) {
		t.Fatalf("debug must be off at info level")
	}
	if !Enabled(ERROR) {
		t.Fatalf("error must be on at info level")
	}
	SetLogLevel(DEBUG)
	if !Enabled(DEBUG) {
		t.Fatalf("debug must be on at debug level")
	}
}

func TestConfigureBadLevelKeepsWorkingLogger(t *testing.T) {
	t.Cleanup(func() { SetLogLevel(INFO) })
	if err := Configure(Options{Level: "verbose"}); err == nil {
		t.Fatalf("expected an error for a bad level")
	}
	if Logger == nil {
		t.Fatalf("a failed configure must leave a usable logger")
	}
}

func TestConfigureWithFile(t *testing.T) {
	t.Cleanup(func() { SetLogLevel(INFO) })
	path := filepath.Join(t.TempDir(), "logs", "nagmail.log")
	if err := Configure(Options{Level: "error", File: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Enabled(ERROR) || Enabled(INFO) {
		t.Fatalf("expected the configured level applied")
	}
}
