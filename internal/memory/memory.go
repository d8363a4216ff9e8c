package memory

import (
	"context"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
)

// Config tunes the monitor. Watermarks are fractions of the limit.
type Config struct {
	LimitBytes        int64 // 0 means use GOMEMLIMIT
	HighWaterMark     float64
	CriticalWaterMark float64
	CheckInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage and holds back image decoding while usage
// sits above the critical watermark. Decoding resumes once usage drops
// below the high watermark.
type Monitor struct {
	config Config
	limit  int64
	alloc  func() uint64

	mu      sync.Mutex
	current uint64
	paused  bool
	resume  chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMonitor returns a monitor for the configured limit. Without an
// explicit limit or GOMEMLIMIT the monitor never pauses.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < math.MaxInt64 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no limit configured, backpressure disabled")
	} else {
		logging.Info("Memory monitor: limit %s, pause at %.0f%%, resume below %.0f%%",
			formatBytes(limit), config.CriticalWaterMark*100, config.HighWaterMark*100)
	}
	return &Monitor{
		config: config,
		limit:  limit,
		alloc:  heapAlloc,
		resume: make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start launches the sampling loop. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends sampling and releases every waiter.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) sample() {
	alloc := m.alloc()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = alloc

	switch {
	case !m.paused && usage >= m.config.CriticalWaterMark:
		logging.Warn("Memory critical (%.1f%% of limit), pausing thumbnail decoding", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPausesTotal.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.HighWaterMark:
		logging.Info("Memory recovered (%.1f%% of limit), resuming thumbnail decoding", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// Wait blocks while the monitor is paused. It returns ctx.Err() if the
// context ends first and nil once work may proceed or the monitor stops.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resume := m.resume
	m.mu.Unlock()

	select {
	case <-resume:
		return nil
	case <-m.stop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Usage returns the last sampled allocation as a fraction of the limit,
// or 0 without a limit.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.current) / float64(m.limit)
}
