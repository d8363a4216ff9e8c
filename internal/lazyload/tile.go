package lazyload

import (
	"context"
	"sync"
	"time"

	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
)

// DefaultTimeout bounds a single tile resolution.
const DefaultTimeout = 10 * time.Second

// State is the load state of a tile.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolver turns a photo id into the URL a tile displays.
type Resolver interface {
	ResolveThumbnail(ctx context.Context, id int64) (string, error)
}

// Source identifies what a tile shows. URL is set when the image location
// is already known from metadata, in which case nothing is resolved.
type Source struct {
	ID  int64
	URL string
}

// TileView is a snapshot of a tile.
type TileView struct {
	ID       int64  `json:"id"`
	State    State  `json:"state"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
	Observed bool   `json:"observed"`
}

// Tile loads one grid image at most once, when it first comes near the viewport.
type Tile struct {
	resolver Resolver
	margin   int
	timeout  time.Duration

	mu       sync.Mutex
	src      Source
	state    State
	url      string
	err      error
	started  bool
	mounted  bool
	gen      uint64
	observer *Observer
	cancel   context.CancelFunc
	done     chan struct{}
}

// TileOption configures a Tile.
type TileOption func(*Tile)

// WithMargin sets the observer margin in pixels.
func WithMargin(margin int) TileOption {
	return func(t *Tile) {
		if margin >= 0 {
			t.margin = margin
		}
	}
}

// WithTimeout sets the resolution timeout.
func WithTimeout(d time.Duration) TileOption {
	return func(t *Tile) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTile creates an unmounted tile for src.
func NewTile(resolver Resolver, src Source, opts ...TileOption) *Tile {
	t := &Tile{
		resolver: resolver,
		margin:   DefaultMargin,
		timeout:  DefaultTimeout,
		src:      src,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the photo id of the current source.
func (t *Tile) ID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.src.ID
}

// Mount puts the tile on screen. A source with a known URL is Loaded
// immediately; otherwise the tile waits Idle behind a visibility observer.
func (t *Tile) Mount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mounted {
		return
	}
	t.mounted = true
	t.mountLocked()
}

// Observer returns the active visibility subscription, or nil when the
// tile is not waiting for visibility.
func (t *Tile) Observer() *Observer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observer
}

// Notify forwards a visibility entry to the tile's observer, if any.
func (t *Tile) Notify(e Entry) bool {
	obs := t.Observer()
	if obs == nil {
		return false
	}
	return obs.Notify(e)
}

// SetSource replaces the tile's source. Any in-flight resolution for the
// previous source is abandoned and its result dropped.
func (t *Tile) SetSource(src Source) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if src == t.src {
		return
	}
	t.teardownLocked()
	t.src = src
	t.state = Idle
	t.url = ""
	t.err = nil
	t.started = false
	if t.mounted {
		t.mountLocked()
	}
}

// Unmount removes the tile. Late resolutions are dropped; a load that
// had not completed starts over on the next Mount.
func (t *Tile) Unmount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.mounted {
		return
	}
	t.mounted = false
	t.teardownLocked()
	if t.state == Loading {
		t.state = Idle
		t.started = false
	}
}

// Snapshot returns the current view of the tile.
func (t *Tile) Snapshot() TileView {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := TileView{
		ID:       t.src.ID,
		State:    t.state,
		URL:      t.url,
		Observed: t.observer != nil,
	}
	if t.err != nil {
		v.Error = t.err.Error()
	}
	return v
}

// Wait blocks until the tile is no longer Loading or ctx is done.
func (t *Tile) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tile) mountLocked() {
	t.gen++
	if t.src.URL != "" {
		t.transitionLocked(Loaded)
		t.url = t.src.URL
		t.started = true
		return
	}
	if t.started {
		// Loaded or Failed before an unmount; the result stands.
		return
	}
	gen := t.gen
	t.state = Idle
	t.observer = NewObserver(t.margin, func(Entry) {
		t.begin(gen)
	})
}

// begin moves Idle to Loading, at most once per source.
func (t *Tile) begin(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.mounted || gen != t.gen || t.started {
		return
	}
	t.started = true
	if t.observer != nil {
		t.observer.Dispose()
		t.observer = nil
	}
	t.transitionLocked(Loading)

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	t.cancel = cancel
	t.done = make(chan struct{})
	id := t.src.ID

	go t.resolve(ctx, gen, id)
}

func (t *Tile) resolve(ctx context.Context, gen uint64, id int64) {
	url, err := t.resolver.ResolveThumbnail(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || !t.mounted {
		logging.Debug("Dropping late tile result for photo %d", id)
		return
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if err != nil {
		logging.Warn("Tile for photo %d failed to load: %v", id, err)
		t.err = err
		t.transitionLocked(Failed)
	} else {
		t.url = url
		t.transitionLocked(Loaded)
	}
	t.closeDoneLocked()
}

// teardownLocked disposes the observer and abandons any resolution.
func (t *Tile) teardownLocked() {
	t.gen++
	if t.observer != nil {
		t.observer.Dispose()
		t.observer = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.closeDoneLocked()
}

func (t *Tile) closeDoneLocked() {
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
}

func (t *Tile) transitionLocked(s State) {
	t.state = s
	metrics.TileTransitionsTotal.WithLabelValues(s.String()).Inc()
}
