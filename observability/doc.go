// Package observability wires OpenTelemetry tracing and metrics export over
// OTLP/HTTP for the transcription service.
package observability
