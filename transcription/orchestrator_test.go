package transcription

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedProvider returns canned responses per call, recording each attempt.
type scriptedProvider struct {
	name      string
	available bool
	responses []func() (*TranscriptionResult, error)
	calls     int
}

func (p *scriptedProvider) Name() string                         { return p.name }
func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return p.available }

func (p *scriptedProvider) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResult, error) {
	idx := p.calls
	p.calls++
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return p.responses[idx]()
}

func okResult(text string) func() (*TranscriptionResult, error) {
	return func() (*TranscriptionResult, error) {
		return &TranscriptionResult{Transcript: text, Confidence: 0.9}, nil
	}
}

func failWith(category ErrorCategory) func() (*TranscriptionResult, error) {
	return func() (*TranscriptionResult, error) {
		return nil, NewProviderError("test", category, errors.New("boom"))
	}
}

func newTestOrchestrator(cfg OrchestratorConfig, providers ...*scriptedProvider) *Orchestrator {
	reg := NewRegistry()
	for _, p := range providers {
		reg.Register(p.name, p)
	}
	return NewOrchestrator(reg, cfg)
}

func TestOrchestratorPrimarySucceeds(t *testing.T) {
	primary := &scriptedProvider{name: "deepgram", available: true, responses: []func() (*TranscriptionResult, error){okResult("hello")}}
	fallback := &scriptedProvider{name: "whisper", available: true, responses: []func() (*TranscriptionResult, error){okResult("fallback")}}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram",
		FallbackProviders: []string{"whisper"},
	}, primary, fallback)

	result, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Provider != "deepgram" {
		t.Errorf("Provider = %q, want deepgram", result.Provider)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestOrchestratorFallsBackInOrder(t *testing.T) {
	primary := &scriptedProvider{name: "deepgram", available: true, responses: []func() (*TranscriptionResult, error){failWith(CategoryUnknown)}}
	second := &scriptedProvider{name: "whisper", available: true, responses: []func() (*TranscriptionResult, error){failWith(CategoryUnknown)}}
	third := &scriptedProvider{name: "assemblyai", available: true, responses: []func() (*TranscriptionResult, error){okResult("third time lucky")}}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram",
		FallbackProviders: []string{"whisper", "assemblyai"},
	}, primary, second, third)

	result, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Provider != "assemblyai" {
		t.Errorf("Provider = %q, want assemblyai", result.Provider)
	}
	if primary.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", primary.calls, second.calls, third.calls)
	}
}

func TestOrchestratorSkipsUnregistered(t *testing.T) {
	registered := &scriptedProvider{name: "whisper", available: true, responses: []func() (*TranscriptionResult, error){okResult("ok")}}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram", // never registered
		FallbackProviders: []string{"whisper"},
	}, registered)

	result, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Provider != "whisper" {
		t.Errorf("Provider = %q, want whisper", result.Provider)
	}
}

func TestOrchestratorAllFail(t *testing.T) {
	a := &scriptedProvider{name: "deepgram", available: true, responses: []func() (*TranscriptionResult, error){failWith(CategoryUnknown)}}
	b := &scriptedProvider{name: "whisper", available: true, responses: []func() (*TranscriptionResult, error){failWith(CategoryInvalidAudio)}}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram",
		FallbackProviders: []string{"whisper"},
	}, a, b)

	_, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if !IsAllProvidersFailed(err) {
		t.Fatalf("Run() error = %v, want AllProvidersFailedError", err)
	}

	var ae *AllProvidersFailedError
	errors.As(err, &ae)
	if len(ae.Attempted) != 2 || ae.Attempted[0] != "deepgram" || ae.Attempted[1] != "whisper" {
		t.Errorf("Attempted = %v, want [deepgram whisper]", ae.Attempted)
	}
	if CategoryOf(ae.LastErr) != CategoryInvalidAudio {
		t.Errorf("LastErr category = %v, want invalid_audio", CategoryOf(ae.LastErr))
	}
}

func TestOrchestratorNoProvidersConfigured(t *testing.T) {
	o := newTestOrchestrator(OrchestratorConfig{PrimaryProvider: "ghost"})

	_, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	var ae *AllProvidersFailedError
	if !errors.As(err, &ae) {
		t.Fatalf("Run() error = %v, want AllProvidersFailedError", err)
	}
	if len(ae.Attempted) != 0 {
		t.Errorf("Attempted = %v, want empty", ae.Attempted)
	}
	if got := ae.Error(); got != "transcription failed: no transcription provider is configured" {
		t.Errorf("Error() = %q", got)
	}
}

func TestOrchestratorRateLimitRecovery(t *testing.T) {
	p := &scriptedProvider{
		name:      "deepgram",
		available: true,
		responses: []func() (*TranscriptionResult, error){
			failWith(CategoryRateLimited),
			okResult("after backoff"),
		},
	}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider: "deepgram",
		Recovery:        RecoveryConfig{Enabled: true, RateLimitDelay: 5 * time.Millisecond},
	}, p)

	result, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Transcript != "after backoff" {
		t.Errorf("Transcript = %q", result.Transcript)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestOrchestratorRecoveryBoundedToOneRetry(t *testing.T) {
	// Provider rate-limits forever: exactly one recovery retry, then it is
	// abandoned for the fallback.
	p := &scriptedProvider{
		name:      "deepgram",
		available: true,
		responses: []func() (*TranscriptionResult, error){failWith(CategoryRateLimited)},
	}
	fb := &scriptedProvider{name: "whisper", available: true, responses: []func() (*TranscriptionResult, error){okResult("fb")}}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram",
		FallbackProviders: []string{"whisper"},
		Recovery:          RecoveryConfig{Enabled: true, RateLimitDelay: time.Millisecond},
	}, p, fb)

	result, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Provider != "whisper" {
		t.Errorf("Provider = %q, want whisper", result.Provider)
	}
	if p.calls != 2 {
		t.Errorf("rate-limited provider called %d times, want 2 (initial + one retry)", p.calls)
	}
}

func TestOrchestratorRecoveryDisabled(t *testing.T) {
	p := &scriptedProvider{
		name:      "deepgram",
		available: true,
		responses: []func() (*TranscriptionResult, error){
			failWith(CategoryRateLimited),
			okResult("should not be reached"),
		},
	}

	o := newTestOrchestrator(OrchestratorConfig{PrimaryProvider: "deepgram"}, p)

	_, err := o.Run(context.Background(), TranscriptionRequest{Audio: []byte("a")})
	if !IsAllProvidersFailed(err) {
		t.Fatalf("Run() error = %v, want AllProvidersFailedError", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 with recovery disabled", p.calls)
	}
}

// A zero MaxRetries is the unset default: recovery stays governed by the
// service-level setting, so a recoverable failure still gets its one retry.
func TestOrchestratorZeroMaxRetriesKeepsRecovery(t *testing.T) {
	p := &scriptedProvider{
		name:      "deepgram",
		available: true,
		responses: []func() (*TranscriptionResult, error){
			failWith(CategoryRateLimited),
			okResult("recovered"),
		},
	}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider: "deepgram",
		Recovery:        RecoveryConfig{Enabled: true, RateLimitDelay: time.Millisecond},
	}, p)

	req := TranscriptionRequest{Audio: []byte("a"), Options: TranscriptionOptions{MaxRetries: 0}}
	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Transcript != "recovered" {
		t.Errorf("Transcript = %q, want result of the single recovery retry", result.Transcript)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want initial attempt plus one retry", p.calls)
	}
}

func TestOrchestratorRecoveryDisabledPerCall(t *testing.T) {
	p := &scriptedProvider{
		name:      "deepgram",
		available: true,
		responses: []func() (*TranscriptionResult, error){failWith(CategoryNetwork)},
	}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider: "deepgram",
		Recovery:        RecoveryConfig{Enabled: true, RateLimitDelay: time.Millisecond},
	}, p)

	req := TranscriptionRequest{Audio: []byte("a"), Options: TranscriptionOptions{MaxRetries: -1}}
	_, err := o.Run(context.Background(), req)
	if !IsAllProvidersFailed(err) {
		t.Fatalf("Run() error = %v, want AllProvidersFailedError", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 with MaxRetries < 0", p.calls)
	}
}

func TestOrchestratorPerCallProviderOverride(t *testing.T) {
	deepgram := &scriptedProvider{name: "deepgram", available: true, responses: []func() (*TranscriptionResult, error){okResult("dg")}}
	whisper := &scriptedProvider{name: "whisper", available: true, responses: []func() (*TranscriptionResult, error){okResult("wh")}}

	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram",
		FallbackProviders: []string{"whisper"},
	}, deepgram, whisper)

	req := TranscriptionRequest{
		Audio:   []byte("a"),
		Options: TranscriptionOptions{Provider: "whisper"},
	}
	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Provider != "whisper" {
		t.Errorf("Provider = %q, want whisper", result.Provider)
	}
	if deepgram.calls != 0 {
		t.Errorf("deepgram called %d times, want 0", deepgram.calls)
	}
}

func TestOrchestratorDeduplicatesOrder(t *testing.T) {
	o := newTestOrchestrator(OrchestratorConfig{
		PrimaryProvider:   "deepgram",
		FallbackProviders: []string{"deepgram", "whisper", "whisper"},
	})

	order := o.attemptOrder(TranscriptionOptions{FallbackProvider: "whisper"})
	want := []string{"deepgram", "whisper"}
	if len(order) != len(want) {
		t.Fatalf("attemptOrder() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("attemptOrder() = %v, want %v", order, want)
		}
	}
}

func TestOrchestratorCancelledContext(t *testing.T) {
	p := &scriptedProvider{name: "deepgram", available: true, responses: []func() (*TranscriptionResult, error){okResult("ok")}}
	o := newTestOrchestrator(OrchestratorConfig{PrimaryProvider: "deepgram"}, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, TranscriptionRequest{Audio: []byte("a")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if p.calls != 0 {
		t.Errorf("calls = %d, want 0 after cancellation", p.calls)
	}
}
