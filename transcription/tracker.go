package transcription

import (
	"context"
	"sync"
)

// RequestTracker tracks in-flight transcription operations by request id so
// callers can cancel them. Cancel handles are context.CancelFuncs created
// per request by the service.
type RequestTracker struct {
	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// NewRequestTracker creates an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{
		inflight: make(map[string]context.CancelFunc),
	}
}

// Track registers a cancel handle under the given request id.
func (t *RequestTracker) Track(requestID string, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[requestID] = cancel
}

// Untrack removes a request without cancelling it. Called on completion,
// success or failure.
func (t *RequestTracker) Untrack(requestID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, requestID)
}

// Cancel invokes the cancel handle for requestID and removes the entry.
// Unknown ids are a no-op; returns whether a request was cancelled.
func (t *RequestTracker) Cancel(requestID string) bool {
	t.mu.Lock()
	cancel, ok := t.inflight[requestID]
	delete(t.inflight, requestID)
	t.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// CancelAll cancels and clears every tracked request. Used on shutdown.
func (t *RequestTracker) CancelAll() {
	t.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(t.inflight))
	for _, cancel := range t.inflight {
		cancels = append(cancels, cancel)
	}
	t.inflight = make(map[string]context.CancelFunc)
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Tracked reports whether requestID is currently in flight.
func (t *RequestTracker) Tracked(requestID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inflight[requestID]
	return ok
}

// Len returns the number of in-flight requests.
func (t *RequestTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
