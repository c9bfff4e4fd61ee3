package webspeech

import (
	"context"
	"strings"
	"testing"

	"github.com/skillsenselab/medscribe/transcription"
)

func TestTranscribeNeverFails(t *testing.T) {
	p := NewProvider()

	result, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{
		Audio:   []byte("anything"),
		Options: transcription.TranscriptionOptions{Language: "en-US"},
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v, stub must never fail", err)
	}
	if !strings.Contains(result.Transcript, "not supported for file processing") {
		t.Errorf("Transcript = %q, want explanatory stub text", result.Transcript)
	}
	if result.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", result.Confidence)
	}
	if result.Language != "en-US" {
		t.Errorf("Language = %q, want passthrough", result.Language)
	}
}

func TestIsAvailable(t *testing.T) {
	if !NewProvider().IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false, stub needs no credentials")
	}
}
