package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestCollectorCollectsOnStart(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{ActiveSessions: 3, ListingPhotos: 75}}
	c := NewCollector(provider, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(SessionsActive); got != 3 {
		t.Errorf("SessionsActive = %v, want 3", got)
	}
	if got := testutil.ToFloat64(ListingPhotos); got != 75 {
		t.Errorf("ListingPhotos = %v, want 75", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	// Must not panic
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{ActiveSessions: 5, ListingPhotos: 12}}
	c := NewCollector(provider, time.Hour)
	c.Start()
	c.Stop()
	c.Stop()

	// Start collects once before waiting on the ticker.
	if got := testutil.ToFloat64(SessionsActive); got != 5 {
		t.Errorf("SessionsActive = %v, want 5", got)
	}
}
