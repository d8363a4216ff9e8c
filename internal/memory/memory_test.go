package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"wedding-gallery/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMonitor(alloc *uint64) *Monitor {
	m := NewMonitor(Config{
		LimitBytes:        1000,
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     time.Hour,
	})
	m.alloc = func() uint64 { return *alloc }
	return m
}

// =============================================================================
// Monitor
// =============================================================================

func TestMonitorWatermarks(t *testing.T) {
	alloc := uint64(0)
	m := newTestMonitor(&alloc)

	steps := []struct {
		alloc  uint64
		paused bool
	}{
		{500, false},
		{849, false},
		{850, true},
		{750, true}, // between watermarks: stay paused
		{699, false},
		{800, false}, // between watermarks: stay running
	}
	for _, s := range steps {
		alloc = s.alloc
		m.sample()
		if m.Paused() != s.paused {
			t.Fatalf("alloc %d: Paused() = %v, want %v", s.alloc, m.Paused(), s.paused)
		}
	}
	if got := m.Usage(); got != 0.8 {
		t.Errorf("Usage() = %v, want 0.8", got)
	}
}

func TestMonitorPauseMetrics(t *testing.T) {
	alloc := uint64(900)
	m := newTestMonitor(&alloc)
	before := testutil.ToFloat64(metrics.MemoryPausesTotal)

	m.sample()
	if got := testutil.ToFloat64(metrics.MemoryPaused); got != 1 {
		t.Errorf("MemoryPaused = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.MemoryPausesTotal) - before; got != 1 {
		t.Errorf("MemoryPausesTotal delta = %v, want 1", got)
	}

	alloc = 100
	m.sample()
	if got := testutil.ToFloat64(metrics.MemoryPaused); got != 0 {
		t.Errorf("MemoryPaused = %v, want 0", got)
	}
}

func TestWaitReturnsImmediatelyWhenRunning(t *testing.T) {
	alloc := uint64(100)
	m := newTestMonitor(&alloc)
	m.sample()
	if err := m.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
}

func TestWaitBlocksUntilRecovery(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(&alloc)
	m.sample()

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("Wait returned %v while paused", err)
	case <-time.After(50 * time.Millisecond):
	}

	alloc = 100
	m.sample()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after recovery")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(&alloc)
	m.sample()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestStopReleasesWaiters(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(&alloc)
	m.sample()

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()
	m.Stop()
	m.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not release waiter")
	}
}

func TestMonitorStartStop(t *testing.T) {
	m := NewMonitor(Config{LimitBytes: 1 << 40, HighWaterMark: 0.7, CriticalWaterMark: 0.85, CheckInterval: 10 * time.Millisecond})
	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()
	if m.Paused() {
		t.Error("monitor paused under a 1TiB limit")
	}
	if m.Usage() <= 0 {
		t.Error("Usage() not sampled")
	}
}
