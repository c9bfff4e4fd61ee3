package config

import (
	"fmt"

	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/observability"
	"github.com/skillsenselab/medscribe/server"
	"github.com/skillsenselab/medscribe/transcription"
)

// ProviderConfig holds credentials and tuning for one vendor adapter. The
// map form feeds the registry factories.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// Map converts the provider config into the factory argument form.
func (p ProviderConfig) Map() map[string]any {
	return map[string]any{
		"api_key":  p.APIKey,
		"base_url": p.BaseURL,
		"model":    p.Model,
	}
}

// ObservabilityConfig groups tracing and metrics settings.
type ObservabilityConfig struct {
	Enabled bool                       `yaml:"enabled" mapstructure:"enabled"`
	Tracer  observability.TracerConfig `yaml:"tracer" mapstructure:"tracer"`
	Meter   observability.MeterConfig  `yaml:"meter" mapstructure:"meter"`
}

// Config is the root application configuration.
type Config struct {
	Server        server.Config               `yaml:"server" mapstructure:"server"`
	Logging       logger.Config               `yaml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig         `yaml:"observability" mapstructure:"observability"`
	Transcription transcription.ServiceConfig `yaml:"transcription" mapstructure:"transcription"`
	Deepgram      ProviderConfig              `yaml:"deepgram" mapstructure:"deepgram"`
	Whisper       ProviderConfig              `yaml:"whisper" mapstructure:"whisper"`
	AssemblyAI    ProviderConfig              `yaml:"assemblyai" mapstructure:"assemblyai"`
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Logging.ApplyDefaults()

	if c.Transcription.PrimaryProvider == "" {
		c.Transcription.PrimaryProvider = "deepgram"
	}
	if len(c.Transcription.FallbackProviders) == 0 {
		c.Transcription.FallbackProviders = []string{"whisper", "assemblyai", "webspeech"}
	}
	if c.Observability.Tracer.ServiceName == "" {
		c.Observability.Tracer = observability.DefaultTracerConfig("medscribe")
	}
	if c.Observability.Meter.ServiceName == "" {
		c.Observability.Meter = observability.DefaultMeterConfig("medscribe")
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Transcription.PrimaryProvider == "" {
		return fmt.Errorf("config: transcription.primary_provider is required")
	}
	return nil
}

// Load reads the full application config with defaults applied.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig("medscribe", cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
