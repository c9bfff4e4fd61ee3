// Package transcription orchestrates speech-to-text across multiple vendor
// providers with ordered fallback, per-provider error recovery, result
// caching, request cancellation, and medical post-processing (term
// extraction, speaker segments, paragraph synthesis).
//
// Provider adapters live in subpackages (deepgram, whisper, assemblyai,
// webspeech) and implement the Provider interface. The Service facade wires
// the registry, orchestrator, cache and tracker together behind a single
// TranscribeAudio entry point.
package transcription
