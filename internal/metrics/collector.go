package metrics

import (
	"sync"
	"time"

	"wedding-gallery/internal/logging"
)

// StatsProvider reports gauges that are cheaper to sample than to track
// on every change.
type StatsProvider interface {
	GetStats() Stats
}

type Stats struct {
	ActiveSessions int
	ListingPhotos  int
}

// Collector samples a StatsProvider on an interval, once immediately on
// Start, and publishes the result as gauges.
type Collector struct {
	provider StatsProvider
	interval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	last Stats
}

func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start() {
	go func() {
		defer close(c.done)
		c.collect()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop ends collection and waits for the loop to exit. It must follow Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}
	stats := c.provider.GetStats()
	SessionsActive.Set(float64(stats.ActiveSessions))
	ListingPhotos.Set(float64(stats.ListingPhotos))

	if stats != c.last {
		logging.Debug("Gallery stats: sessions=%d, photos=%d", stats.ActiveSessions, stats.ListingPhotos)
		c.last = stats
	}
}
