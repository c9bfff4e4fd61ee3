// Package webspeech is a placeholder provider for browser-native speech
// recognition. Recognition runs inside the browser session, so server-side
// file processing cannot use it; the adapter exists so the provider can sit
// in fallback chains without special-casing, returning an explanatory stub
// result instead of failing.
package webspeech

import (
	"context"

	"github.com/skillsenselab/medscribe/provider"
	"github.com/skillsenselab/medscribe/transcription"
)

// ProviderName is the registry id of this adapter.
const ProviderName = "webspeech"

// stubConfidence is deliberately low but non-zero so downstream consumers
// treating zero confidence as "no data" still surface the stub text.
const stubConfidence = 0.1

const stubTranscript = "Web Speech API transcription is not supported for file processing. Please use browser-based real-time transcription instead."

// Provider is the browser-native speech recognition stand-in.
type Provider struct{}

// NewProvider creates the stub provider.
func NewProvider() *Provider { return &Provider{} }

// Factory adapts NewProvider to the registry factory signature.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		return NewProvider(), nil
	}
}

// Name implements transcription.Provider.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable always reports true; the stub needs no credentials.
func (p *Provider) IsAvailable(ctx context.Context) bool { return true }

// Transcribe returns the stub result. It never fails, which makes the
// provider a terminal fallback that keeps the pipeline's result contract
// intact.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResult, error) {
	return &transcription.TranscriptionResult{
		Transcript: stubTranscript,
		Confidence: stubConfidence,
		Language:   req.Options.Language,
		Metadata:   transcription.Metadata{Model: "webspeech-stub"},
	}, nil
}
