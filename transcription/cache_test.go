package transcription

import (
	"testing"
	"time"
)

func TestCacheKeyStable(t *testing.T) {
	audio := []byte("audio-bytes")
	opts := TranscriptionOptions{Language: "en-US", Diarize: true}

	if CacheKey(audio, opts) != CacheKey(audio, opts) {
		t.Error("CacheKey() not deterministic for identical inputs")
	}
}

func TestCacheKeyVariesByAudioAndOptions(t *testing.T) {
	audio := []byte("audio-bytes")
	base := TranscriptionOptions{Language: "en-US"}

	if CacheKey(audio, base) == CacheKey([]byte("other-bytes"), base) {
		t.Error("CacheKey() identical for different audio")
	}
	if CacheKey(audio, base) == CacheKey(audio, TranscriptionOptions{Language: "es-ES"}) {
		t.Error("CacheKey() identical for different options")
	}
}

func TestResultCachePutGet(t *testing.T) {
	c := NewResultCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() hit on empty cache")
	}

	want := &TranscriptionResult{Transcript: "hello"}
	c.Put("k", want)

	got, ok := c.Get("k")
	if !ok || got.Transcript != "hello" {
		t.Errorf("Get() = (%v, %v)", got, ok)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestResultCacheExpiry(t *testing.T) {
	c := NewResultCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("k", &TranscriptionResult{Transcript: "stale"})

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("Get() hit on expired entry")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expiry eviction, want 0", c.Size())
	}
}

func TestResultCacheOverwrite(t *testing.T) {
	c := NewResultCache(time.Minute)
	c.Put("k", &TranscriptionResult{Transcript: "first"})
	c.Put("k", &TranscriptionResult{Transcript: "second"})

	got, _ := c.Get("k")
	if got.Transcript != "second" {
		t.Errorf("Transcript = %q, want last write", got.Transcript)
	}
}

func TestResultCacheClear(t *testing.T) {
	c := NewResultCache(time.Minute)
	c.Put("a", &TranscriptionResult{})
	c.Put("b", &TranscriptionResult{})

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", c.Size())
	}
}
