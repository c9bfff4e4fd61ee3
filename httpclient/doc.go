// Package httpclient provides an HTTP client for outbound vendor calls with
// bearer/token auth, multipart upload, optional retry, and classified errors.
// Error classification (timeout, connection, auth, rate_limit, server) is the
// bridge the transcription adapters use to map vendor failures onto provider
// error categories.
package httpclient
