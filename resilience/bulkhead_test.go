package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkheadLimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 2, MaxWait: time.Second})

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func() error {
				n := atomic.AddInt32(&current, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("expected at most 2 concurrent executions, observed %d", peak)
	}
}

func TestBulkheadQueuesRatherThanRejects(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "queue", MaxConcurrent: 1, MaxWait: time.Second})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan error, 1)
	go func() {
		done <- b.Execute(context.Background(), func() error { return nil })
	}()

	// Second call should be waiting, not failed.
	select {
	case err := <-done:
		t.Fatalf("expected second call to queue, got %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("queued call failed: %v", err)
	}
}

func TestBulkheadFailsImmediatelyWithoutWait(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "nowait", MaxConcurrent: 1, MaxWait: 0})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
}

func TestBulkheadPropagatesFnError(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "err", MaxConcurrent: 1})
	want := errors.New("inner")
	err := b.Execute(context.Background(), func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected inner error, got %v", err)
	}
	if b.InUse() != 0 {
		t.Error("expected slot released after error")
	}
}

func TestExecuteWithResult(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "res", MaxConcurrent: 1})
	got, err := ExecuteWithResult(b, context.Background(), func() (string, error) {
		return "value", nil
	})
	if err != nil || got != "value" {
		t.Errorf("expected value, got %q err=%v", got, err)
	}
}
