// Package deepgram implements a transcription provider backed by Deepgram's
// prerecorded audio API, using the medical-tuned nova-2-medical model by
// default.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/skillsenselab/medscribe/httpclient"
	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/provider"
	"github.com/skillsenselab/medscribe/transcription"
)

// ProviderName is the registry id of this adapter.
const ProviderName = "deepgram"

const (
	defaultBaseURL = "https://api.deepgram.com"
	defaultModel   = "nova-2-medical"
	listenPath     = "/v1/listen"
)

// supportedLanguages maps BCP-47 tags onto Deepgram language codes for the
// medical model. Unsupported tags fall back to US English rather than
// failing the request.
var supportedLanguages = map[string]string{
	"en":    "en",
	"en-US": "en-US",
	"en-GB": "en-GB",
	"en-AU": "en-AU",
	"en-NZ": "en-NZ",
	"en-IN": "en-IN",
}

// Config configures the Deepgram provider.
type Config struct {
	// APIKey is the Deepgram API key. The provider reports unavailable
	// without one.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Model is the Deepgram model id. Defaults to nova-2-medical.
	Model string `yaml:"model" mapstructure:"model"`
}

// Provider calls Deepgram's prerecorded transcription endpoint.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// NewProvider creates a Deepgram provider.
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
		Auth:    httpclient.TokenAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram: %w", err)
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		log:    logger.Get("deepgram"),
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

// Transcribe sends the audio to Deepgram and normalizes the response.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResult, error) {
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method:  "POST",
		Path:    listenPath + "?" + p.queryParams(req.Options).Encode(),
		Headers: map[string]string{"Content-Type": "application/octet-stream"},
		Body:    req.Audio,
	})
	if err != nil {
		return nil, transcription.ClassifyVendorError(ProviderName, err)
	}

	var payload listenResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
			fmt.Errorf("decode response: %w", err))
	}

	return p.normalize(&payload)
}

// queryParams builds the Deepgram feature flags. url.Values is used directly
// because keywords repeat per term.
func (p *Provider) queryParams(opts transcription.TranscriptionOptions) url.Values {
	q := url.Values{}
	q.Set("model", p.cfg.Model)
	q.Set("language", p.mapLanguage(opts.Language))
	q.Set("punctuate", strconv.FormatBool(opts.Punctuate))
	q.Set("smart_format", strconv.FormatBool(opts.SmartFormat))
	if opts.Paragraphs {
		q.Set("paragraphs", "true")
	}
	if opts.Diarize {
		q.Set("diarize", "true")
	}
	for _, term := range opts.BoostTerms {
		q.Add("keywords", term)
	}
	return q
}

// mapLanguage resolves a BCP-47 tag to a Deepgram language code, defaulting
// to en-US.
func (p *Provider) mapLanguage(tag string) string {
	if code, ok := supportedLanguages[tag]; ok {
		return code
	}
	if tag != "" {
		p.log.Debug("unsupported language tag, defaulting", logger.Fields("language", tag))
	}
	return "en-US"
}

// normalize converts Deepgram's channel/alternative structure into the
// common result shape.
func (p *Provider) normalize(payload *listenResponse) (*transcription.TranscriptionResult, error) {
	if len(payload.Results.Channels) == 0 || len(payload.Results.Channels[0].Alternatives) == 0 {
		return nil, transcription.NewProviderError(ProviderName, transcription.CategoryUnknown,
			fmt.Errorf("response contains no transcription alternatives"))
	}
	alt := payload.Results.Channels[0].Alternatives[0]

	result := &transcription.TranscriptionResult{
		Transcript: alt.Transcript,
		Confidence: alt.Confidence,
		Duration:   payload.Metadata.Duration,
		Metadata:   transcription.Metadata{Model: p.cfg.Model},
	}

	for _, w := range alt.Words {
		word := transcription.Word{
			Text:       w.displayText(),
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
		}
		if w.Speaker != nil {
			speaker := *w.Speaker
			word.Speaker = &speaker
		}
		result.Words = append(result.Words, word)
	}

	for _, para := range alt.Paragraphs.Paragraphs {
		converted := transcription.Paragraph{Start: para.Start, End: para.End}
		for _, s := range para.Sentences {
			converted.Sentences = append(converted.Sentences, transcription.Sentence{
				Text:  s.Text,
				Start: s.Start,
				End:   s.End,
			})
		}
		result.Paragraphs = append(result.Paragraphs, converted)
	}

	return result, nil
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
