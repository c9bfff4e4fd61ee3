// Package whisper implements a general-purpose transcription provider backed
// by OpenAI's Whisper audio transcription API.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/skillsenselab/medscribe/httpclient"
	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/provider"
	"github.com/skillsenselab/medscribe/transcription"
)

// ProviderName is the registry id of this adapter.
const ProviderName = "whisper"

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "whisper-1"
	transcribePath = "/v1/audio/transcriptions"

	// maxPromptLen caps the vocabulary prompt; Whisper only attends to the
	// final 224 tokens of it anyway.
	maxPromptLen = 1000
)

// Config configures the Whisper provider.
type Config struct {
	// APIKey is the OpenAI API key. The provider reports unavailable
	// without one.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Model is the Whisper model id. Defaults to whisper-1.
	Model string `yaml:"model" mapstructure:"model"`
}

// Provider calls the Whisper transcription endpoint. Whisper has no native
// diarization or keyword boosting; vocabulary hints travel in the prompt
// field and diarization degrades silently.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// NewProvider creates a Whisper provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	// Each call is bounded by the caller's context, so orchestrated retries
	// can widen the deadline without fighting a client-side timeout.
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		log:    logger.Get("whisper"),
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

// Transcribe uploads the audio as multipart form data and normalizes the
// verbose JSON response.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResult, error) {
	fields := map[string]string{
		"model":           p.cfg.Model,
		"response_format": "verbose_json",
	}
	if lang := iso639(req.Options.Language); lang != "" {
		fields["language"] = lang
	}
	if prompt := buildPrompt(req); prompt != "" {
		fields["prompt"] = prompt
	}
	if req.Options.WordTimestamps {
		fields["timestamp_granularities[]"] = "word"
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: "POST",
		Path:   transcribePath,
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "file",
				FileName:    "audio.wav",
				ContentType: "audio/wav",
				Data:        req.Audio,
			}},
		},
	})
	if err != nil {
		return nil, transcription.ClassifyVendorError(ProviderName, err)
	}

	var payload verboseResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
			fmt.Errorf("decode response: %w", err))
	}

	return p.normalize(&payload), nil
}

// buildPrompt assembles a vocabulary-priming prompt from boost terms and the
// session medical context.
func buildPrompt(req transcription.TranscriptionRequest) string {
	var parts []string
	if len(req.Options.BoostTerms) > 0 {
		parts = append(parts, strings.Join(req.Options.BoostTerms, ", "))
	}
	if mc := req.Medical; mc != nil {
		if mc.Specialty != "" {
			parts = append(parts, "Specialty: "+mc.Specialty)
		}
		if mc.ChiefComplaint != "" {
			parts = append(parts, "Chief complaint: "+mc.ChiefComplaint)
		}
		if len(mc.Medications) > 0 {
			parts = append(parts, "Medications: "+strings.Join(mc.Medications, ", "))
		}
	}
	prompt := strings.Join(parts, ". ")
	if len(prompt) > maxPromptLen {
		prompt = prompt[len(prompt)-maxPromptLen:]
	}
	return prompt
}

// iso639 reduces a BCP-47 tag to its primary language subtag, which is what
// the Whisper API expects.
func iso639(tag string) string {
	if tag == "" {
		return ""
	}
	if idx := strings.IndexByte(tag, '-'); idx > 0 {
		return strings.ToLower(tag[:idx])
	}
	return strings.ToLower(tag)
}

// normalize converts the verbose response. Whisper reports log probabilities
// per segment rather than confidences; exp(avg_logprob) maps them back onto
// [0,1].
func (p *Provider) normalize(payload *verboseResponse) *transcription.TranscriptionResult {
	result := &transcription.TranscriptionResult{
		Transcript: strings.TrimSpace(payload.Text),
		Confidence: segmentConfidence(payload.Segments),
		Duration:   payload.Duration,
		Language:   payload.Language,
		Metadata:   transcription.Metadata{Model: p.cfg.Model},
	}

	for _, w := range payload.Words {
		result.Words = append(result.Words, transcription.Word{
			Text:       w.Word,
			Start:      w.Start,
			End:        w.End,
			Confidence: result.Confidence,
		})
	}

	return result
}

// segmentConfidence averages exp(avg_logprob) across segments. No segments
// means no signal, reported as a neutral 0.8.
func segmentConfidence(segments []segment) float64 {
	if len(segments) == 0 {
		return 0.8
	}
	sum := 0.0
	for _, s := range segments {
		sum += math.Exp(s.AvgLogprob)
	}
	conf := sum / float64(len(segments))
	if conf > 1 {
		conf = 1
	}
	return conf
}

func configFromMap(m map[string]any) Config {
	cfg := Config{}
	if v, ok := m["api_key"].(string); ok {
		cfg.APIKey = v
	}
	if v, ok := m["base_url"].(string); ok {
		cfg.BaseURL = v
	}
	if v, ok := m["model"].(string); ok {
		cfg.Model = v
	}
	return cfg
}
