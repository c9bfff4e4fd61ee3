package whisper

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillsenselab/medscribe/transcription"
)

const sampleResponse = `{
	"text": " Patient reports dizziness and fatigue.",
	"language": "english",
	"duration": 8.2,
	"segments": [
		{"text": "Patient reports dizziness", "start": 0.0, "end": 2.0, "avg_logprob": -0.1},
		{"text": "and fatigue.", "start": 2.0, "end": 3.5, "avg_logprob": -0.3}
	],
	"words": [
		{"word": "Patient", "start": 0.0, "end": 0.5},
		{"word": "reports", "start": 0.5, "end": 1.0}
	]
}`

func TestTranscribe(t *testing.T) {
	var gotAuth, gotModel, gotPrompt, gotLanguage string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		gotModel = r.FormValue("model")
		gotPrompt = r.FormValue("prompt")
		gotLanguage = r.FormValue("language")

		if _, header, err := r.FormFile("file"); err != nil {
			t.Errorf("FormFile() error = %v", err)
		} else if header.Filename != "audio.wav" {
			t.Errorf("file name = %q", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	result, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{
		Audio: []byte("fake-audio"),
		Options: transcription.TranscriptionOptions{
			Language:   "en-US",
			BoostTerms: []string{"metformin"},
		},
		Medical: &transcription.MedicalContext{
			Specialty:      "cardiology",
			ChiefComplaint: "dizziness",
		},
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if result.Transcript != "Patient reports dizziness and fatigue." {
		t.Errorf("Transcript = %q", result.Transcript)
	}
	if result.Duration != 8.2 {
		t.Errorf("Duration = %v, want 8.2", result.Duration)
	}
	if len(result.Words) != 2 {
		t.Errorf("len(Words) = %d, want 2", len(result.Words))
	}

	wantConf := (math.Exp(-0.1) + math.Exp(-0.3)) / 2
	if math.Abs(result.Confidence-wantConf) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", result.Confidence, wantConf)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer scheme", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q, want ISO-639 en", gotLanguage)
	}
	if gotPrompt == "" {
		t.Error("prompt is empty, want boost terms and medical context")
	}
}

func TestTranscribeRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{Audio: []byte("a")})
	if got := transcription.CategoryOf(err); got != transcription.CategoryRateLimited {
		t.Errorf("category = %v, want rate_limited", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(transcription.TranscriptionRequest{
		Options: transcription.TranscriptionOptions{BoostTerms: []string{"lisinopril", "amlodipine"}},
		Medical: &transcription.MedicalContext{Medications: []string{"aspirin"}},
	})
	want := "lisinopril, amlodipine. Medications: aspirin"
	if prompt != want {
		t.Errorf("buildPrompt() = %q, want %q", prompt, want)
	}

	if got := buildPrompt(transcription.TranscriptionRequest{}); got != "" {
		t.Errorf("buildPrompt(empty) = %q, want empty", got)
	}
}

func TestIso639(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"en-US", "en"},
		{"es-ES", "es"},
		{"fr", "fr"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := iso639(tt.tag); got != tt.want {
			t.Errorf("iso639(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestSegmentConfidenceDefaults(t *testing.T) {
	if got := segmentConfidence(nil); got != 0.8 {
		t.Errorf("segmentConfidence(nil) = %v, want 0.8", got)
	}
	// Positive logprobs clamp to 1.
	if got := segmentConfidence([]segment{{AvgLogprob: 0.5}}); got != 1 {
		t.Errorf("segmentConfidence(positive) = %v, want 1", got)
	}
}

func TestIsAvailable(t *testing.T) {
	p, _ := NewProvider(Config{APIKey: "k"})
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false with API key")
	}
	empty, _ := NewProvider(Config{})
	if empty.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true without API key")
	}
}
