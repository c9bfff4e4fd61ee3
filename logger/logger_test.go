package logger

import (
	"testing"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format 'console', got %q", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid json", Config{Level: "debug", Format: "json"}, false},
		{"valid console", Config{Level: "info", Format: "console"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("provider", "deepgram", "attempt", 2)
	if m["provider"] != "deepgram" {
		t.Errorf("expected provider field, got %v", m)
	}
	if m["attempt"] != 2 {
		t.Errorf("expected attempt field, got %v", m)
	}
}

func TestFieldsOddArgs(t *testing.T) {
	m := Fields("only-key")
	if len(m) != 0 {
		t.Errorf("expected empty map for dangling key, got %v", m)
	}
}

func TestRegistryFallback(t *testing.T) {
	l := Get("never-registered")
	if l == nil {
		t.Fatal("expected component-tagged fallback logger, got nil")
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("test")
	Register("cache", l)
	if got := Get("cache"); got != l {
		t.Error("expected registered logger instance")
	}
}
