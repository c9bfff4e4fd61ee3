package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skillsenselab/medscribe/httpclient"
)

// ErrorCategory classifies a provider failure for recovery decisions.
type ErrorCategory string

const (
	// CategoryRateLimited indicates the vendor throttled the request.
	CategoryRateLimited ErrorCategory = "rate_limited"
	// CategoryNetwork indicates a transport failure or timeout.
	CategoryNetwork ErrorCategory = "network"
	// CategoryInvalidAudio indicates the vendor rejected the audio payload.
	CategoryInvalidAudio ErrorCategory = "invalid_audio"
	// CategoryUnauthorized indicates bad or missing credentials.
	CategoryUnauthorized ErrorCategory = "unauthorized"
	// CategoryUnknown covers everything else.
	CategoryUnknown ErrorCategory = "unknown"
)

// ProviderError is a classified failure from a single provider attempt. It
// is consumed by the orchestrator's recovery step and never reaches the
// caller directly.
type ProviderError struct {
	// Provider is the id of the provider that failed.
	Provider string
	// Category is the machine-readable failure class.
	Category ErrorCategory
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Category, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError creates a classified provider error.
func NewProviderError(providerID string, category ErrorCategory, err error) *ProviderError {
	return &ProviderError{Provider: providerID, Category: category, Err: err}
}

// CategoryOf extracts the error category from an error chain, defaulting to
// unknown for unclassified errors.
func CategoryOf(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryUnknown
}

// ClassifyVendorError maps an httpclient error onto a ProviderError. The
// httpclient error codes line up with the category taxonomy: rate_limit →
// rate_limited, timeout/connection → network, auth → unauthorized, and
// client-side validation → invalid_audio.
func ClassifyVendorError(providerID string, err error) *ProviderError {
	var he *httpclient.Error
	if errors.As(err, &he) {
		switch he.Code {
		case httpclient.ErrCodeRateLimit:
			return NewProviderError(providerID, CategoryRateLimited, err)
		case httpclient.ErrCodeTimeout, httpclient.ErrCodeConnection:
			return NewProviderError(providerID, CategoryNetwork, err)
		case httpclient.ErrCodeAuth:
			return NewProviderError(providerID, CategoryUnauthorized, err)
		case httpclient.ErrCodeValidation:
			return NewProviderError(providerID, CategoryInvalidAudio, err)
		}
	}
	// Per-attempt timeouts surface as context deadline errors.
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(providerID, CategoryNetwork, err)
	}
	return NewProviderError(providerID, CategoryUnknown, err)
}

// AllProvidersFailedError is the terminal error surfaced to the caller when
// the attempt order is exhausted. It names the providers attempted and the
// last underlying error, but never vendor credentials.
type AllProvidersFailedError struct {
	// Attempted lists provider ids that were actually attempted, in order.
	Attempted []string
	// LastErr is the final underlying error, nil when no provider was
	// registered at all.
	LastErr error
}

// Error implements the error interface, distinguishing a configuration
// problem (nothing registered) from a transient outage (all attempts failed).
func (e *AllProvidersFailedError) Error() string {
	if len(e.Attempted) == 0 {
		return "transcription failed: no transcription provider is configured"
	}
	return fmt.Sprintf("transcription failed: all providers failed (attempted: %s): %v",
		strings.Join(e.Attempted, ", "), e.LastErr)
}

// Unwrap returns the last underlying error.
func (e *AllProvidersFailedError) Unwrap() error { return e.LastErr }

// IsAllProvidersFailed reports whether err is the terminal aggregate error.
func IsAllProvidersFailed(err error) bool {
	var ae *AllProvidersFailedError
	return errors.As(err, &ae)
}
