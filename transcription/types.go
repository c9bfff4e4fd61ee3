package transcription

import (
	"time"
)

// TranscriptionOptions holds caller-tunable parameters for a transcription
// call. Options are value-copied into the request and never mutated after
// construction.
type TranscriptionOptions struct {
	// Language is the expected language of the audio as a BCP-47 tag
	// (e.g. "en-US", "es-ES"). Adapters map it to vendor vocabularies.
	Language string `json:"language,omitempty"`
	// MedicalMode enables vocabulary-boosted recognition and post-hoc
	// medical term / speaker enrichment.
	MedicalMode bool `json:"medical_mode,omitempty"`
	// Punctuate requests automatic punctuation.
	Punctuate bool `json:"punctuate,omitempty"`
	// Paragraphs requests paragraph boundaries.
	Paragraphs bool `json:"paragraphs,omitempty"`
	// WordTimestamps requests per-word timing.
	WordTimestamps bool `json:"word_timestamps,omitempty"`
	// Diarize requests speaker diarization.
	Diarize bool `json:"diarize,omitempty"`
	// SmartFormat requests vendor smart formatting (numbers, dates, units).
	SmartFormat bool `json:"smart_format,omitempty"`
	// BoostTerms is a vocabulary boost list injected by adapters that
	// support keyword boosting when MedicalMode is set.
	BoostTerms []string `json:"boost_terms,omitempty"`
	// Provider selects the primary provider for this call, overriding the
	// service-level default.
	Provider string `json:"provider,omitempty"`
	// FallbackProvider is an explicit fallback tried right after the
	// primary, ahead of the configured fallback chain.
	FallbackProvider string `json:"fallback_provider,omitempty"`
	// AttemptTimeout bounds each provider attempt. Zero uses the service
	// default.
	AttemptTimeout time.Duration `json:"attempt_timeout,omitempty"`
	// MaxRetries bounds recovery retries per provider. Values above one are
	// capped: recovery is never attempted more than once per provider per
	// request. Zero is the unset default and leaves the service-level
	// recovery setting in effect; only a negative value disables recovery
	// for this call.
	MaxRetries int `json:"max_retries,omitempty"`
}

// TranscriptionRequest is the uniform request handed to provider adapters.
type TranscriptionRequest struct {
	// Audio is the raw audio payload. Container format is whatever the
	// selected provider accepts; base64 decoding happens at the HTTP
	// boundary before reaching this core.
	Audio []byte
	// Options are the caller's transcription options.
	Options TranscriptionOptions
	// Medical is the session-scoped context snapshot taken when the request
	// started. Adapters that support prompt or vocabulary injection may fold
	// it into the vendor call. May be nil.
	Medical *MedicalContext
}

// Word is a transcribed word with timing and confidence.
type Word struct {
	// Text is the word as transcribed.
	Text string `json:"text"`
	// Start is the word start offset in seconds.
	Start float64 `json:"start"`
	// End is the word end offset in seconds.
	End float64 `json:"end"`
	// Confidence is the recognition confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Speaker is the diarized speaker index, if available.
	Speaker *int `json:"speaker,omitempty"`
}

// Sentence is a sentence within a paragraph.
type Sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Paragraph groups sentences with shared timing.
type Paragraph struct {
	Sentences []Sentence `json:"sentences"`
	Start     float64    `json:"start"`
	End       float64    `json:"end"`
}

// TermCategory classifies a medical vocabulary term.
type TermCategory string

const (
	CategoryCondition   TermCategory = "condition"
	CategoryMedication  TermCategory = "medication"
	CategoryProcedure   TermCategory = "procedure"
	CategoryAnatomy     TermCategory = "anatomy"
	CategorySymptom     TermCategory = "symptom"
	CategoryMeasurement TermCategory = "measurement"
)

// MedicalTerm is a vocabulary hit located in the transcript.
type MedicalTerm struct {
	// Term is the matched text as it appears in the vocabulary.
	Term string `json:"term"`
	// Category classifies the term.
	Category TermCategory `json:"category"`
	// Offset is the character offset of the match in the transcript.
	Offset int `json:"offset"`
	// Length is the match length in characters.
	Length int `json:"length"`
	// Start and End carry the timing of the enclosing word, when word-level
	// timing was available.
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`
	// Confidence is the confidence of the enclosing word, or the overall
	// transcript confidence when no word timing was available.
	Confidence float64 `json:"confidence"`
	// Codes holds coded identifiers keyed by system (e.g. "icd10", "rxnorm").
	Codes map[string]string `json:"codes,omitempty"`
}

// SpeakerSegment is a run of consecutive words sharing a speaker.
type SpeakerSegment struct {
	// Speaker is the diarized speaker index.
	Speaker int `json:"speaker"`
	// Text is the segment text, words joined by spaces.
	Text string `json:"text"`
	// Start is the first word's start offset in seconds.
	Start float64 `json:"start"`
	// End is the last word's end offset in seconds.
	End float64 `json:"end"`
	// Confidence is the running average of the merged words' confidence.
	Confidence float64 `json:"confidence"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	// RequestID identifies the originating request.
	RequestID string `json:"request_id,omitempty"`
	// ProcessingTime is the wall-clock time spent producing the result.
	ProcessingTime time.Duration `json:"processing_time_ms"`
	// WordCount is the number of transcribed words.
	WordCount int `json:"word_count"`
	// CharCount is the transcript length in characters.
	CharCount int `json:"char_count"`
	// AverageConfidence is the mean word confidence, or the overall
	// confidence when no word-level data exists.
	AverageConfidence float64 `json:"average_confidence"`
	// Model is the vendor model identifier that produced the transcript.
	Model string `json:"model,omitempty"`
	// Timestamp is when the result was assembled.
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptionResult is the normalized output of a transcription call.
// Results are never mutated after construction; enrichment builds a new
// value.
type TranscriptionResult struct {
	// Transcript is the full transcription text.
	Transcript string `json:"transcript"`
	// Confidence is the overall confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Provider is the id of the provider that produced this transcript.
	Provider string `json:"provider"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
	// Words contains per-word timing, if the provider supplied it.
	Words []Word `json:"words,omitempty"`
	// Paragraphs contains paragraph structure, native or synthesized.
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
	// MedicalTerms contains vocabulary hits, populated in medical mode.
	MedicalTerms []MedicalTerm `json:"medical_terms,omitempty"`
	// SpeakerSegments contains diarization segments, populated in medical
	// mode when word-level speaker tags exist.
	SpeakerSegments []SpeakerSegment `json:"speaker_segments,omitempty"`
	// Metadata describes processing statistics.
	Metadata Metadata `json:"metadata"`
}

// MedicalContext carries session-scoped hints adapters may fold into
// vendor-specific prompts or vocabulary boosts. It is shared, last-writer-wins
// state on the service: replacing it affects subsequently started requests
// only.
type MedicalContext struct {
	PatientID      string   `json:"patient_id,omitempty"`
	ProviderID     string   `json:"provider_id,omitempty"`
	Specialty      string   `json:"specialty,omitempty"`
	VisitType      string   `json:"visit_type,omitempty"`
	ChiefComplaint string   `json:"chief_complaint,omitempty"`
	Medications    []string `json:"medications,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
	History        []string `json:"history,omitempty"`
}
