package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" || calls != 1 {
		t.Errorf("expected one successful call, got result=%q calls=%d", result, calls)
	}
}

func TestRetryEventualSuccess(t *testing.T) {
	calls := 0
	cfg := FixedDelayConfig(3, time.Millisecond)
	result, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 || calls != 3 {
		t.Errorf("expected success on third call, got result=%d calls=%d", result, calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	cfg := FixedDelayConfig(2, time.Millisecond)
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	cfg := FixedDelayConfig(5, time.Millisecond)
	cfg.RetryIf = func(err error) bool { return !errors.Is(err, permanent) }

	_, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", calls)
	}
}

func TestRetryRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := FixedDelayConfig(10, 50*time.Millisecond)

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, cfg, func() (int, error) {
		calls++
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFixedDelayConfigNoCompounding(t *testing.T) {
	cfg := FixedDelayConfig(4, 200*time.Millisecond)
	for attempt := 1; attempt <= 3; attempt++ {
		if got := calculateBackoff(attempt, cfg); got != 200*time.Millisecond {
			t.Errorf("attempt %d: expected constant 200ms, got %v", attempt, got)
		}
	}
}

func TestRetryOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := FixedDelayConfig(3, time.Millisecond)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Retry(context.Background(), cfg, func() (int, error) {
		return 0, errors.New("x")
	})
	if len(attempts) != 2 {
		t.Errorf("expected OnRetry before each retry (2), got %v", attempts)
	}
}
