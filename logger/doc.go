// Package logger provides structured logging for the transcription service,
// backed by zerolog. Components obtain tagged loggers via Get(name) and log
// with message + field maps:
//
//	log := logger.Get("orchestrator")
//	log.Info("attempt succeeded", logger.Fields("provider", "deepgram"))
package logger
