package lazyload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeResolver struct {
	mu    sync.Mutex
	urls  map[int64]string
	err   error
	gate  chan struct{}
	calls map[int64]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{urls: make(map[int64]string), calls: make(map[int64]int)}
}

func (r *fakeResolver) ResolveThumbnail(ctx context.Context, id int64) (string, error) {
	r.mu.Lock()
	r.calls[id]++
	gate := r.gate
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	return r.urls[id], nil
}

func (r *fakeResolver) callCount(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id]
}

func waitTile(t *testing.T, tile *Tile) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := tile.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

// =============================================================================
// State machine
// =============================================================================

func TestTileWithKnownURLSkipsObservation(t *testing.T) {
	r := newFakeResolver()
	tile := NewTile(r, Source{ID: 3, URL: "https://cdn/3_t.jpg"})
	tile.Mount()

	if tile.Observer() != nil {
		t.Error("tile with a known url must not register an observer")
	}
	view := tile.Snapshot()
	if view.State != Loaded || view.URL != "https://cdn/3_t.jpg" || view.Observed {
		t.Errorf("Snapshot() = %+v", view)
	}
	if r.callCount(3) != 0 {
		t.Error("resolver should not be called")
	}
}

func TestTileLoadsOnFirstVisibility(t *testing.T) {
	r := newFakeResolver()
	r.urls[5] = "https://origin/5_t.jpg"
	tile := NewTile(r, Source{ID: 5})
	tile.Mount()

	if got := tile.Snapshot().State; got != Idle {
		t.Fatalf("state after Mount = %v, want idle", got)
	}
	if tile.Observer() == nil {
		t.Fatal("idle tile should register an observer")
	}

	if tile.Notify(Entry{Distance: 500}) {
		t.Error("entry outside the margin should not fire")
	}
	if got := tile.Snapshot().State; got != Idle {
		t.Errorf("state = %v, want idle", got)
	}

	if !tile.Notify(Entry{Distance: 120}) {
		t.Fatal("entry inside the margin should fire")
	}
	waitTile(t, tile)

	view := tile.Snapshot()
	if view.State != Loaded || view.URL != "https://origin/5_t.jpg" {
		t.Errorf("Snapshot() = %+v", view)
	}
	if tile.Observer() != nil {
		t.Error("observer should be disposed once loading starts")
	}
}

func TestTileLoadsAtMostOnce(t *testing.T) {
	r := newFakeResolver()
	r.urls[5] = "u"
	r.gate = make(chan struct{})
	tile := NewTile(r, Source{ID: 5})
	tile.Mount()

	obs := tile.Observer()
	obs.Notify(Entry{Intersecting: true})
	obs.Notify(Entry{Intersecting: true})
	tile.Notify(Entry{Intersecting: true})

	if got := tile.Snapshot().State; got != Loading {
		t.Errorf("state = %v, want loading", got)
	}
	close(r.gate)
	waitTile(t, tile)

	if n := r.callCount(5); n != 1 {
		t.Errorf("resolver called %d times, want 1", n)
	}
}

func TestTileFailureIsFinal(t *testing.T) {
	r := newFakeResolver()
	r.err = errors.New("boom")
	tile := NewTile(r, Source{ID: 9})
	tile.Mount()

	tile.Notify(Entry{Intersecting: true})
	waitTile(t, tile)

	view := tile.Snapshot()
	if view.State != Failed || view.Error == "" {
		t.Errorf("Snapshot() = %+v, want failed with error", view)
	}

	tile.Notify(Entry{Intersecting: true})
	if n := r.callCount(9); n != 1 {
		t.Errorf("resolver called %d times, want 1 (no retry)", n)
	}
}

func TestTileResultAfterUnmountDropped(t *testing.T) {
	r := newFakeResolver()
	r.urls[5] = "late"
	r.gate = make(chan struct{})
	tile := NewTile(r, Source{ID: 5})
	tile.Mount()

	tile.Notify(Entry{Intersecting: true})
	tile.Unmount()
	close(r.gate)

	// Wait returns immediately after unmount; give the goroutine time to finish.
	waitTile(t, tile)
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if tile.Snapshot().URL != "" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := tile.Snapshot().URL; got != "" {
		t.Errorf("URL = %q, late result should be dropped", got)
	}
}

func TestTileSetSourceDropsPreviousResult(t *testing.T) {
	r := newFakeResolver()
	r.urls[1] = "one"
	r.urls[2] = "two"
	r.gate = make(chan struct{})
	tile := NewTile(r, Source{ID: 1})
	tile.Mount()

	old := tile.Observer()
	tile.Notify(Entry{Intersecting: true})
	tile.SetSource(Source{ID: 2})

	if got := tile.Snapshot(); got.ID != 2 || got.State != Idle {
		t.Errorf("Snapshot() after SetSource = %+v", got)
	}
	if tile.Observer() == nil || tile.Observer() == old {
		t.Error("SetSource should register a fresh observer")
	}

	tile.Notify(Entry{Intersecting: true})
	close(r.gate)
	waitTile(t, tile)

	if got := tile.Snapshot().URL; got != "two" {
		t.Errorf("URL = %q, want two", got)
	}
}

func TestTileRemountAfterAbandonedLoad(t *testing.T) {
	r := newFakeResolver()
	r.urls[6] = "six"
	r.gate = make(chan struct{})
	tile := NewTile(r, Source{ID: 6})
	tile.Mount()

	tile.Notify(Entry{Intersecting: true})
	tile.Unmount()
	if got := tile.Snapshot().State; got != Idle {
		t.Fatalf("State after unmount mid-load = %v, want idle", got)
	}

	tile.Mount()
	if tile.Observer() == nil {
		t.Fatal("remount should register a new observer")
	}
	tile.Notify(Entry{Intersecting: true})
	close(r.gate)
	waitTile(t, tile)

	if got := tile.Snapshot(); got.State != Loaded || got.URL != "six" {
		t.Errorf("Snapshot() after remount = %+v, want loaded six", got)
	}
	if n := r.callCount(6); n != 2 {
		t.Errorf("resolver calls = %d, want 2", n)
	}
}

func TestTileRemountKeepsResult(t *testing.T) {
	r := newFakeResolver()
	r.urls[8] = "eight"
	tile := NewTile(r, Source{ID: 8})
	tile.Mount()
	tile.Notify(Entry{Intersecting: true})
	waitTile(t, tile)

	tile.Unmount()
	tile.Mount()

	if got := tile.Snapshot(); got.State != Loaded || got.URL != "eight" || got.Observed {
		t.Errorf("Snapshot() after remount = %+v, want loaded eight without observer", got)
	}
	if n := r.callCount(8); n != 1 {
		t.Errorf("resolver calls = %d, want 1", n)
	}
}

func TestTileUnmountDisposesObserver(t *testing.T) {
	tile := NewTile(newFakeResolver(), Source{ID: 4})
	tile.Mount()
	obs := tile.Observer()

	tile.Unmount()

	if !obs.Disposed() {
		t.Error("Unmount should dispose the observer")
	}
	if obs.Notify(Entry{Intersecting: true}) {
		t.Error("disposed observer should not fire")
	}
	if tile.Snapshot().State != Idle {
		t.Error("unmounted tile should stay idle")
	}
}

func TestTileWaitIdle(t *testing.T) {
	tile := NewTile(newFakeResolver(), Source{ID: 1})
	tile.Mount()
	if err := tile.Wait(context.Background()); err != nil {
		t.Errorf("Wait() on idle tile = %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Idle:      "idle",
		Loading:   "loading",
		Loaded:    "loaded",
		Failed:    "failed",
		State(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
