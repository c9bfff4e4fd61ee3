package transcription

import (
	"context"

	"github.com/skillsenselab/medscribe/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the normalized
	// result. Failures carry a *ProviderError with a machine-readable
	// category so the orchestrator can decide on recovery.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResult, error)
}
