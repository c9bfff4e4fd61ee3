package transcription

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

const defaultCacheTTL = time.Hour

// CacheKey builds a content-addressed key from the raw audio bytes and the
// serialized options, so identical audio with different feature flags maps
// to a different entry.
func CacheKey(audio []byte, opts TranscriptionOptions) string {
	audioSum := sha256.Sum256(audio)

	// Options marshal deterministically: encoding/json emits struct fields
	// in declaration order.
	optsJSON, _ := json.Marshal(opts)
	optsSum := sha256.Sum256(optsJSON)

	return hex.EncodeToString(audioSum[:]) + ":" + hex.EncodeToString(optsSum[:8])
}

type cacheEntry struct {
	result     *TranscriptionResult
	insertedAt time.Time
}

// ResultCache is a time-bounded, in-memory cache of transcription results.
// Entries older than the TTL are treated as misses on lookup; they may
// linger in the map until the next lookup evicts them. Failed transcriptions
// are never cached.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewResultCache creates a cache with the given TTL. A non-positive TTL uses
// the one-hour default.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for key, or false on miss. An expired entry
// behaves as a miss and is evicted.
func (c *ResultCache) Get(key string) (*TranscriptionResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

// Put stores a result under key, unconditionally overwriting. Concurrent
// writers for the same key are last-writer-wins.
func (c *ResultCache) Put(key string, result *TranscriptionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, insertedAt: c.now()}
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Size returns the number of entries, including any not-yet-evicted expired
// ones.
func (c *ResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
