package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/grid"
	"wedding-gallery/internal/lazyload"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
	"wedding-gallery/internal/viewer"

	"github.com/google/uuid"
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Cache is what sessions need from the photo cache.
type Cache interface {
	GetAll(ctx context.Context) []directory.Photo
	Len() int
	lazyload.Resolver
	viewer.Cache
}

// Config holds per-session settings.
type Config struct {
	BatchSize      int
	LazyMargin     int
	SwipeThreshold int
	FetchTimeout   time.Duration
	TTL            time.Duration
}

// Manager owns all live sessions.
type Manager struct {
	cache   Cache
	fetcher viewer.Fetcher
	config  Config
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(cache Cache, fetcher viewer.Fetcher, config Config) *Manager {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.LazyMargin <= 0 {
		config.LazyMargin = lazyload.DefaultMargin
	}
	return &Manager{
		cache:    cache,
		fetcher:  fetcher,
		config:   config,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session over the current listing with its first batch
// already displayed.
func (m *Manager) Create(ctx context.Context) *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Grid:      grid.New(m.config.BatchSize),
		Viewer: viewer.New(m.cache, m.fetcher, viewer.Config{
			SwipeThreshold: m.config.SwipeThreshold,
			Timeout:        m.config.FetchTimeout,
		}),
		resolver: m.cache,
		tileOpts: []lazyload.TileOption{
			lazyload.WithMargin(m.config.LazyMargin),
			lazyload.WithTimeout(m.config.FetchTimeout),
		},
		tiles:    make(map[int64]*lazyload.Tile),
		lastSeen: now,
	}

	s.Grid.OnAppend(s.mountBatch)
	s.Grid.Mount(m.cache.GetAll(ctx))

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	logging.Debug("Session %s created (%d photos, %d sessions)", s.ID, s.Grid.View().Total, count)
	return s
}

// Get returns a live session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	now := m.now()
	if now.Sub(s.idleSince()) >= m.config.TTL {
		m.remove(id, true)
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	s.touch(now)
	return s, nil
}

// Info describes s.
func (m *Manager) Info(s *Session) Info {
	return Info{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.idleSince().Add(m.config.TTL),
	}
}

// Delete ends a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	return m.remove(id, false)
}

// Refresh re-reads the listing and hands it to the session's grid. It
// reports whether pagination was reset.
func (m *Manager) Refresh(ctx context.Context, s *Session) bool {
	photos := m.cache.GetAll(ctx)

	s.ops.Lock()
	defer s.ops.Unlock()

	reset := s.Grid.SetItems(photos)
	s.pruneTiles()
	return reset
}

// CleanExpired removes every session idle for at least the TTL and
// returns how many were removed.
func (m *Manager) CleanExpired() int {
	now := m.now()

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) >= m.config.TTL {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if m.remove(id, true) {
			removed++
		}
	}
	if removed > 0 {
		logging.Info("Cleaned up %d expired sessions", removed)
	}
	return removed
}

// StartCleanup runs CleanExpired every interval until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// GetStats implements metrics.StatsProvider.
func (m *Manager) GetStats() metrics.Stats {
	return metrics.Stats{
		ActiveSessions: m.Count(),
		ListingPhotos:  m.cache.Len(),
	}
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	metrics.SessionsActive.Set(0)
}

func (m *Manager) remove(id string, expired bool) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	metrics.SessionsActive.Set(float64(count))
	if expired {
		metrics.SessionsExpiredTotal.Inc()
		logging.Debug("Session %s expired", id)
	}
	return true
}
