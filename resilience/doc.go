// Package resilience provides retry with context-aware backoff and a
// bulkhead for bounding concurrent work. The transcription orchestrator uses
// retry for provider error recovery; the service facade uses the bulkhead to
// queue requests beyond the configured concurrency limit.
package resilience
