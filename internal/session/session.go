package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/grid"
	"wedding-gallery/internal/lazyload"
	"wedding-gallery/internal/viewer"
)

// ErrTileNotFound is returned for a photo that has no mounted tile.
var ErrTileNotFound = errors.New("tile not found")

// Session is one visitor's gallery: a paginated grid, a tile per displayed
// photo and a lightbox. Composite operations are serialized per session.
type Session struct {
	ID        string
	CreatedAt time.Time

	Grid   *grid.Controller
	Viewer *viewer.Viewer

	resolver lazyload.Resolver
	tileOpts []lazyload.TileOption

	ops sync.Mutex

	mu       sync.Mutex
	tiles    map[int64]*lazyload.Tile
	lastSeen time.Time
	closed   bool
}

// Info describes a session to its client.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GridView is the grid snapshot plus the state of every mounted tile, in
// display order.
type GridView struct {
	grid.View
	Tiles []lazyload.TileView `json:"tiles"`
}

// Tile returns the tile mounted for photo id.
func (s *Session) Tile(id int64) (*lazyload.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiles[id]
	if !ok {
		return nil, fmt.Errorf("photo %d: %w", id, ErrTileNotFound)
	}
	return t, nil
}

// NotifyTile delivers a visibility entry to the tile of photo id.
func (s *Session) NotifyTile(id int64, e lazyload.Entry) (bool, error) {
	t, err := s.Tile(id)
	if err != nil {
		return false, err
	}
	return t.Notify(e), nil
}

// NotifySentinel delivers a visibility entry to the grid sentinel. It
// reports whether a batch was loaded.
func (s *Session) NotifySentinel(e lazyload.Entry) bool {
	s.ops.Lock()
	defer s.ops.Unlock()

	sentinel := s.Grid.Sentinel()
	if sentinel == nil {
		return false
	}
	before := s.Grid.View().Displayed
	sentinel.Notify(e)
	return s.Grid.View().Displayed > before
}

// OpenViewer opens the lightbox at photo id over the full ordered list as
// it stands now.
func (s *Session) OpenViewer(id int64) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	return s.Viewer.Open(s.Grid.Items(), id)
}

// GridView returns the grid and its tiles.
func (s *Session) GridView() GridView {
	view := GridView{View: s.Grid.View()}
	view.Tiles = make([]lazyload.TileView, 0, len(view.Photos))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range view.Photos {
		if t, ok := s.tiles[p.ID]; ok {
			view.Tiles = append(view.Tiles, t.Snapshot())
		}
	}
	return view
}

// mountBatch mounts a tile for each photo of a newly displayed batch. A
// tile that already exists only picks up the photo's current source.
func (s *Session) mountBatch(batch []directory.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, p := range batch {
		src := sourceOf(p)
		if t, ok := s.tiles[p.ID]; ok {
			t.SetSource(src)
			continue
		}
		t := lazyload.NewTile(s.resolver, src, s.tileOpts...)
		t.Mount()
		s.tiles[p.ID] = t
	}
}

// pruneTiles unmounts tiles whose photo is no longer displayed.
func (s *Session) pruneTiles() {
	displayed := make(map[int64]directory.Photo)
	for _, p := range s.Grid.Displayed() {
		displayed[p.ID] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tiles {
		p, ok := displayed[id]
		if !ok {
			t.Unmount()
			delete(s.tiles, id)
			continue
		}
		t.SetSource(sourceOf(p))
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.Grid.Unmount()
	s.Viewer.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.tiles {
		t.Unmount()
		delete(s.tiles, id)
	}
}

func sourceOf(p directory.Photo) lazyload.Source {
	return lazyload.Source{ID: p.ID, URL: p.Thumbnail()}
}
