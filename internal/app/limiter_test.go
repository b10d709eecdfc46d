package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDynamicLimiter_BoundsConcurrency(t *testing.T) {
	l := NewDynamicLimiter(2)
	ctx := context.Background()

	// Simule le fan-out des sept jours: jamais plus de deux en vol.
	var inFlight, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 7; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(ctx); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()

			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > 2 {
		t.Fatalf("limit exceeded: %d concurrent acquires", p)
	}
	if l.InFlight() != 0 {
		t.Fatalf("in-flight count not drained: %d", l.InFlight())
	}
}

func TestDynamicLimiter_SetLimitWakesWaiters(t *testing.T) {
	l := NewDynamicLimiter(1)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = l.Acquire(ctx)
		close(done)
	}()

	// Bloqué tant que limit=1.
	select {
	case <-done:
		t.Fatalf("acquire should block at limit 1")
	case <-time.After(50 * time.Millisecond):
	}

	// Le hook settings relève le plafond: le waiter passe sans Release.
	l.SetLimit(2)
	select {
	case <-done:
	case <-time.After(250 * time.Millisecond):
		t.Fatalf("waiter should have been woken by SetLimit")
	}

	l.Release()
	l.Release()
}

func TestDynamicLimiter_ClampsToOne(t *testing.T) {
	l := NewDynamicLimiter(0)
	if l.Limit() != 1 {
		t.Fatalf("zero limit should clamp to 1, got %d", l.Limit())
	}
	l.SetLimit(-3)
	if l.Limit() != 1 {
		t.Fatalf("negative limit should clamp to 1, got %d", l.Limit())
	}
}

func TestDynamicLimiter_AcquireHonorsContext(t *testing.T) {
	l := NewDynamicLimiter(1)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := l.Acquire(ctx); err == nil {
		t.Fatalf("expected context error")
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatalf("acquire returned before context deadline")
	}
}
