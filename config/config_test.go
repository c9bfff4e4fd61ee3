package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/skillsenselab/medscribe/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
server:
  port: 9090
transcription:
  primary_provider: whisper
  attempt_timeout: 30s
deepgram:
  enabled: true
  api_key: dg-key
  model: nova-2-medical
`)

	cfg := &Config{}
	if err := LoadConfig("medscribe", cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Transcription.PrimaryProvider != "whisper" {
		t.Errorf("primary_provider = %q", cfg.Transcription.PrimaryProvider)
	}
	if cfg.Transcription.AttemptTimeout != 30*time.Second {
		t.Errorf("attempt_timeout = %v", cfg.Transcription.AttemptTimeout)
	}
	if !cfg.Deepgram.Enabled || cfg.Deepgram.APIKey != "dg-key" {
		t.Errorf("deepgram config not loaded: %+v", cfg.Deepgram)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
deepgram:
  api_key: from-file
`)
	t.Setenv("DEEPGRAM_API_KEY", "from-env")

	cfg := &Config{}
	if err := LoadConfig("medscribe", cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Deepgram.APIKey != "from-env" {
		t.Errorf("api_key = %q, want from-env", cfg.Deepgram.APIKey)
	}
}

func TestLoadConfig_MissingFileIsNotAnError(t *testing.T) {
	cfg := &Config{}
	if err := LoadConfig("medscribe", cfg, WithConfigFile(filepath.Join(t.TempDir(), "absent.yml"))); err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "server: [not a map")

	cfg := &Config{}
	if err := LoadConfig("medscribe", cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Transcription.PrimaryProvider != "deepgram" {
		t.Errorf("primary_provider = %q, want deepgram", cfg.Transcription.PrimaryProvider)
	}
	want := []string{"whisper", "assemblyai", "webspeech"}
	if !reflect.DeepEqual(cfg.Transcription.FallbackProviders, want) {
		t.Errorf("fallback_providers = %v, want %v", cfg.Transcription.FallbackProviders, want)
	}
	if cfg.Observability.Tracer.ServiceName != "medscribe" {
		t.Errorf("tracer service name = %q", cfg.Observability.Tracer.ServiceName)
	}
}

func TestValidate_BadLoggingLevel(t *testing.T) {
	cfg := &Config{Logging: logger.Config{Level: "bogus", Format: "json"}}
	cfg.Transcription.PrimaryProvider = "deepgram"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bogus logging level")
	}
}

func TestKeyVariants(t *testing.T) {
	got := keyVariants("DEEPGRAM_API_KEY")
	want := map[string]bool{
		"deepgram_api_key": true,
		"deepgram.api.key": true,
		"deepgram.api_key": true,
	}
	for _, v := range got {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants: %v (got %v)", want, got)
	}

	single := keyVariants("HOME")
	if len(single) != 1 || single[0] != "home" {
		t.Errorf("single-part variants = %v", single)
	}
}

func TestProviderConfigMap(t *testing.T) {
	pc := ProviderConfig{APIKey: "k", BaseURL: "https://api.example.com", Model: "m"}
	m := pc.Map()
	if m["api_key"] != "k" || m["base_url"] != "https://api.example.com" || m["model"] != "m" {
		t.Errorf("unexpected map: %v", m)
	}
}
