package transcription

import (
	"context"
	"errors"
	"testing"

	"github.com/skillsenselab/medscribe/httpclient"
)

func TestClassifyVendorError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"rate limit", httpclient.ClassifyStatusCode(429, nil), CategoryRateLimited},
		{"timeout", httpclient.NewTimeoutError(errors.New("deadline")), CategoryNetwork},
		{"connection", httpclient.NewConnectionError(errors.New("refused")), CategoryNetwork},
		{"auth", httpclient.ClassifyStatusCode(401, nil), CategoryUnauthorized},
		{"forbidden", httpclient.ClassifyStatusCode(403, nil), CategoryUnauthorized},
		{"validation", httpclient.ClassifyStatusCode(400, nil), CategoryInvalidAudio},
		{"server", httpclient.ClassifyStatusCode(500, nil), CategoryUnknown},
		{"deadline exceeded", context.DeadlineExceeded, CategoryNetwork},
		{"plain", errors.New("weird"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := ClassifyVendorError("deepgram", tt.err)
			if pe.Category != tt.want {
				t.Errorf("Category = %v, want %v", pe.Category, tt.want)
			}
			if pe.Provider != "deepgram" {
				t.Errorf("Provider = %q", pe.Provider)
			}
			if !errors.Is(pe, tt.err) {
				t.Error("ProviderError does not wrap the original error")
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	pe := NewProviderError("x", CategoryRateLimited, errors.New("429"))
	if got := CategoryOf(pe); got != CategoryRateLimited {
		t.Errorf("CategoryOf() = %v, want rate_limited", got)
	}
	if got := CategoryOf(errors.New("plain")); got != CategoryUnknown {
		t.Errorf("CategoryOf(plain) = %v, want unknown", got)
	}
}

func TestAllProvidersFailedErrorMessages(t *testing.T) {
	empty := &AllProvidersFailedError{}
	if got := empty.Error(); got != "transcription failed: no transcription provider is configured" {
		t.Errorf("Error() = %q", got)
	}

	failed := &AllProvidersFailedError{
		Attempted: []string{"deepgram", "whisper"},
		LastErr:   errors.New("boom"),
	}
	want := "transcription failed: all providers failed (attempted: deepgram, whisper): boom"
	if got := failed.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(failed, failed.LastErr) {
		t.Error("Unwrap() does not expose the last error")
	}
}
