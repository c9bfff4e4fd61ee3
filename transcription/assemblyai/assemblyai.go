// Package assemblyai implements a transcription provider backed by
// AssemblyAI's asynchronous transcript API: audio is uploaded, a transcript
// job is created, and the job is polled until it settles.
package assemblyai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/medscribe/httpclient"
	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/provider"
	"github.com/skillsenselab/medscribe/resilience"
	"github.com/skillsenselab/medscribe/transcription"
)

// ProviderName is the registry id of this adapter.
const ProviderName = "assemblyai"

const (
	defaultBaseURL      = "https://api.assemblyai.com"
	defaultPollInterval = time.Second

	uploadPath     = "/v2/upload"
	transcriptPath = "/v2/transcript"
)

// supportedLanguages maps BCP-47 tags onto AssemblyAI language codes.
// Unsupported tags fall back to en_us.
var supportedLanguages = map[string]string{
	"en":    "en",
	"en-US": "en_us",
	"en-GB": "en_uk",
	"en-AU": "en_au",
	"es":    "es",
	"es-ES": "es",
	"fr":    "fr",
	"fr-FR": "fr",
	"de":    "de",
	"de-DE": "de",
}

// Config configures the AssemblyAI provider.
type Config struct {
	// APIKey is the AssemblyAI API key. The provider reports unavailable
	// without one.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// PollInterval is the delay between job status checks.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// Provider drives AssemblyAI's upload/submit/poll flow. The overall job and
// every HTTP call within it are bounded by the caller's context.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	retry  resilience.RetryConfig
	log    *logger.Logger
}

// NewProvider creates an AssemblyAI provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	// Calls are bounded by the caller's context, so orchestrated retries
	// can widen the deadline without fighting a client-side timeout.
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Auth:    httpclient.APIKeyAuth(cfg.APIKey, "Authorization"),
	})
	if err != nil {
		return nil, fmt.Errorf("assemblyai: %w", err)
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		retry:  *httpclient.DefaultRetryConfig(),
		log:    logger.Get("assemblyai"),
	}, nil
}

// Factory adapts NewProvider to the registry factory signature.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		return NewProvider(configFromMap(cfg))
	}
}

// Name implements transcription.Provider.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether credentials are configured.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.cfg.APIKey != ""
}

// Transcribe uploads the audio, submits a transcript job and polls it to
// completion.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResult, error) {
	audioURL, err := p.upload(ctx, req.Audio)
	if err != nil {
		return nil, err
	}

	jobID, err := p.submit(ctx, audioURL, req.Options)
	if err != nil {
		return nil, err
	}

	return p.poll(ctx, jobID)
}

// upload is idempotent, so transient transport failures are retried at the
// client level before the orchestrator sees them.
func (p *Provider) upload(ctx context.Context, audio []byte) (string, error) {
	resp, err := resilience.Retry(ctx, p.retry, func() (*httpclient.Response, error) {
		return p.client.Do(ctx, httpclient.Request{
			Method:  "POST",
			Path:    uploadPath,
			Headers: map[string]string{"Content-Type": "application/octet-stream"},
			Body:    audio,
		})
	})
	if err != nil {
		return "", transcription.ClassifyVendorError(ProviderName, err)
	}

	var payload uploadResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
			fmt.Errorf("decode upload response: %w", err))
	}
	if payload.UploadURL == "" {
		return "", transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
			fmt.Errorf("upload response missing upload_url"))
	}
	return payload.UploadURL, nil
}

func (p *Provider) submit(ctx context.Context, audioURL string, opts transcription.TranscriptionOptions) (string, error) {
	body := transcriptRequest{
		AudioURL:      audioURL,
		LanguageCode:  p.mapLanguage(opts.Language),
		Punctuate:     opts.Punctuate,
		FormatText:    opts.SmartFormat,
		SpeakerLabels: opts.Diarize,
	}
	if len(opts.BoostTerms) > 0 {
		body.WordBoost = opts.BoostTerms
		body.BoostParam = "high"
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: "POST",
		Path:   transcriptPath,
		Body:   body,
	})
	if err != nil {
		return "", transcription.ClassifyVendorError(ProviderName, err)
	}

	var payload transcriptResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
			fmt.Errorf("decode submit response: %w", err))
	}
	return payload.ID, nil
}

// poll checks the job at a fixed interval until it completes, errors, or the
// context expires. Status reads are idempotent, so each one retries transient
// transport failures; job submission is never retried.
func (p *Provider) poll(ctx context.Context, jobID string) (*transcription.TranscriptionResult, error) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		resp, err := resilience.Retry(ctx, p.retry, func() (*httpclient.Response, error) {
			return p.client.Do(ctx, httpclient.Request{
				Method: "GET",
				Path:   transcriptPath + "/" + jobID,
			})
		})
		if err != nil {
			return nil, transcription.ClassifyVendorError(ProviderName, err)
		}

		var payload transcriptResponse
		if err := json.Unmarshal(resp.Body, &payload); err != nil {
			return nil, transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
				fmt.Errorf("decode poll response: %w", err))
		}

		switch payload.Status {
		case "completed":
			return p.normalize(&payload), nil
		case "error":
			return nil, transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
				fmt.Errorf("transcript job failed: %s", payload.Error))
		}

		select {
		case <-ctx.Done():
			return nil, transcription.NewProviderError(ProviderName, transcription.CategoryNetwork, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (p *Provider) mapLanguage(tag string) string {
	if code, ok := supportedLanguages[tag]; ok {
		return code
	}
	if tag != "" {
		p.log.Debug("unsupported language tag, defaulting", logger.Fields("language", tag))
	}
	return "en_us"
}

// normalize converts milliseconds to seconds and letter speaker labels to
// zero-based indices.
func (p *Provider) normalize(payload *transcriptResponse) *transcription.TranscriptionResult {
	result := &transcription.TranscriptionResult{
		Transcript: payload.Text,
		Confidence: payload.Confidence,
		Duration:   float64(payload.AudioDuration),
		Metadata:   transcription.Metadata{Model: "assemblyai-best"},
	}

	for _, w := range payload.Words {
		word := transcription.Word{
			Text:       w.Text,
			Start:      float64(w.Start) / 1000,
			End:        float64(w.End) / 1000,
			Confidence: w.Confidence,
		}
		if idx, ok := speakerIndex(w.Speaker); ok {
			word.Speaker = &idx
		}
		result.Words = append(result.Words, word)
	}

	return result
}

// speakerIndex maps AssemblyAI's letter labels onto indices: A is 0, B is 1,
// and so on.
func speakerIndex(label string) (int, bool) {
	label = strings.TrimSpace(label)
	if len(label) != 1 || label[0] < 'A' || label[0] > 'Z' {
		return 0, false
	}
	return int(label[0] - 'A'), true
}

func configFromMap(m map[string]any) Config {
	cfg := Config{}
	if v, ok := m["api_key"].(string); ok {
		cfg.APIKey = v
	}
	if v, ok := m["base_url"].(string); ok {
		cfg.BaseURL = v
	}
	switch v := m["poll_interval"].(type) {
	case time.Duration:
		cfg.PollInterval = v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	return cfg
}
