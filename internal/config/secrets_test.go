package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvOrFile(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(secretPath, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("writing secret: %v", err)
	}

	t.Run("file wins over direct value", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "direct")
		t.Setenv("TEST_SECRET_FILE", secretPath)
		if got := getEnvOrFile("TEST_SECRET", "TEST_SECRET_FILE"); got != "from-file" {
			t.Errorf("got %q, want from-file", got)
		}
	})

	t.Run("direct value when no file", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "direct")
		t.Setenv("TEST_SECRET_FILE", "")
		if got := getEnvOrFile("TEST_SECRET", "TEST_SECRET_FILE"); got != "direct" {
			t.Errorf("got %q, want direct", got)
		}
	})

	t.Run("unreadable file falls back", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "direct")
		t.Setenv("TEST_SECRET_FILE", "/does/not/exist")
		if got := getEnvOrFile("TEST_SECRET", "TEST_SECRET_FILE"); got != "direct" {
			t.Errorf("got %q, want direct", got)
		}
	})
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{" true ", false, true},
		{"maybe", true, true},
		{"maybe", false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		if got := parseBool(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBool(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
