package viewer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
)

const (
	// DefaultSwipeThreshold is the horizontal displacement in pixels a
	// swipe must exceed to navigate.
	DefaultSwipeThreshold = 50

	// DefaultTimeout bounds one image resolution or download.
	DefaultTimeout = 10 * time.Second
)

// Key names understood by HandleKey.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

var (
	// ErrNotInWorkingSet is returned by Open for an id outside the working set.
	ErrNotInWorkingSet = errors.New("photo not in working set")

	// ErrNotOpen is returned by operations that need an open viewer.
	ErrNotOpen = errors.New("viewer is not open")

	// ErrNotResolved is returned by DownloadCurrent before the current image is known.
	ErrNotResolved = errors.New("current image not resolved")
)

// Cache resolves full-size image URLs.
type Cache interface {
	Resolved(id int64) (string, bool)
	ResolveURL(ctx context.Context, id int64) (string, error)
}

// Fetcher downloads image bytes.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, string, error)
}

// Config holds viewer settings.
type Config struct {
	SwipeThreshold int
	Timeout        time.Duration
	// ScrollLock, when set, is called with true on Open and false on Close.
	ScrollLock func(locked bool)
}

// View is a snapshot of the viewer.
type View struct {
	Open         bool   `json:"open"`
	ID           int64  `json:"id,omitempty"`
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	Position     string `json:"position,omitempty"`
	URL          string `json:"url,omitempty"`
	Alt          string `json:"alt,omitempty"`
	Loading      bool   `json:"loading"`
	Error        string `json:"error,omitempty"`
	Notice       string `json:"notice,omitempty"`
	ScrollLocked bool   `json:"scroll_locked"`
}

// Viewer is the lightbox: one photo at a time from a fixed working set,
// with cyclic navigation. Only image resolution and download do I/O.
type Viewer struct {
	cache      Cache
	fetcher    Fetcher
	threshold  int
	timeout    time.Duration
	scrollLock func(bool)

	mu      sync.Mutex
	open    bool
	ids     []int64
	alts    []string
	index   int
	gen     uint64
	url     string
	loading bool
	err     error
	notice  string
	cancel  context.CancelFunc
	done    chan struct{}

	touching   bool
	touchStart int
	touchEnd   int
	touchMoved bool
}

// New creates a closed viewer.
func New(cache Cache, fetcher Fetcher, cfg Config) *Viewer {
	v := &Viewer{
		cache:      cache,
		fetcher:    fetcher,
		threshold:  cfg.SwipeThreshold,
		timeout:    cfg.Timeout,
		scrollLock: cfg.ScrollLock,
	}
	if v.threshold <= 0 {
		v.threshold = DefaultSwipeThreshold
	}
	if v.timeout <= 0 {
		v.timeout = DefaultTimeout
	}
	return v
}

// Open shows the photo atID. The working set is the ordered photo list at
// the time of opening and stays fixed until the next Open.
func (v *Viewer) Open(workingSet []directory.Photo, atID int64) error {
	index := slices.IndexFunc(workingSet, func(p directory.Photo) bool {
		return p.ID == atID
	})
	if index < 0 {
		return fmt.Errorf("photo %d: %w", atID, ErrNotInWorkingSet)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.ids = make([]int64, len(workingSet))
	v.alts = make([]string, len(workingSet))
	for i, p := range workingSet {
		v.ids[i] = p.ID
		v.alts[i] = p.Alt
	}
	v.index = index
	v.notice = ""
	v.resetTouchLocked()
	if !v.open {
		v.open = true
		if v.scrollLock != nil {
			v.scrollLock(true)
		}
	}
	metrics.ViewerNavigationsTotal.WithLabelValues("open").Inc()
	v.showLocked()
	return nil
}

// Next advances to the following photo, wrapping to the first.
func (v *Viewer) Next() {
	v.step(1, "next")
}

// Prev moves to the preceding photo, wrapping to the last.
func (v *Viewer) Prev() {
	v.step(-1, "prev")
}

// Close leaves the viewer and clears the resolved image. A resolution
// still in flight is dropped when it completes.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return
	}
	v.open = false
	v.abandonLocked()
	v.url = ""
	v.err = nil
	v.loading = false
	v.notice = ""
	v.resetTouchLocked()
	if v.scrollLock != nil {
		v.scrollLock(false)
	}
	metrics.ViewerNavigationsTotal.WithLabelValues("close").Inc()
}

// HandleKey applies a keyboard binding and reports whether the key was
// consumed. Keys are ignored while closed.
func (v *Viewer) HandleKey(key string) bool {
	if !v.IsOpen() {
		return false
	}
	switch key {
	case KeyEscape:
		v.Close()
	case KeyArrowLeft:
		v.Prev()
	case KeyArrowRight:
		v.Next()
	default:
		return false
	}
	return true
}

// TouchStart records where a touch began.
func (v *Viewer) TouchStart(x int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touching = true
	v.touchStart = x
	v.touchEnd = x
	v.touchMoved = false
}

// TouchMove records the latest touch position.
func (v *Viewer) TouchMove(x int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.touching {
		return
	}
	v.touchEnd = x
	v.touchMoved = true
}

// TouchEnd completes a gesture. A touch that never moved is not a swipe.
func (v *Viewer) TouchEnd() bool {
	v.mu.Lock()
	moved := v.touching && v.touchMoved
	dx := v.touchEnd - v.touchStart
	v.resetTouchLocked()
	v.mu.Unlock()

	if !moved {
		return false
	}
	return v.Swipe(dx)
}

// Swipe navigates on a horizontal displacement dx (end minus start).
// Leftward beyond the threshold goes forward, rightward goes back.
func (v *Viewer) Swipe(dx int) bool {
	if !v.IsOpen() {
		return false
	}
	switch {
	case dx < -v.threshold:
		v.Next()
	case dx > v.threshold:
		v.Prev()
	default:
		return false
	}
	return true
}

// IsOpen reports whether the viewer is showing a photo.
func (v *Viewer) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Current returns the id at the current index.
func (v *Viewer) Current() (int64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return 0, false
	}
	return v.ids[v.index], true
}

// DismissNotice clears the download notice.
func (v *Viewer) DismissNotice() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = ""
}

// View returns a snapshot of the viewer.
func (v *Viewer) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()

	view := View{
		Open:         v.open,
		Notice:       v.notice,
		ScrollLocked: v.open,
	}
	if !v.open {
		return view
	}
	view.ID = v.ids[v.index]
	view.Index = v.index
	view.Total = len(v.ids)
	view.Position = fmt.Sprintf("%d / %d", v.index+1, len(v.ids))
	view.URL = v.url
	view.Alt = v.alts[v.index]
	view.Loading = v.loading
	if v.err != nil {
		view.Error = v.err.Error()
	}
	return view
}

// Wait blocks until the current resolution finishes or ctx is done.
func (v *Viewer) Wait(ctx context.Context) error {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()
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

func (v *Viewer) step(delta int, action string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || len(v.ids) == 0 {
		return
	}
	n := len(v.ids)
	v.index = ((v.index+delta)%n + n) % n
	metrics.ViewerNavigationsTotal.WithLabelValues(action).Inc()
	v.showLocked()
}

// showLocked displays the photo at the current index. A memoized URL is
// applied at once; otherwise a resolution tagged with a new generation
// starts in the background.
func (v *Viewer) showLocked() {
	v.abandonLocked()
	v.gen++
	v.err = nil

	id := v.ids[v.index]
	if url, ok := v.cache.Resolved(id); ok {
		v.url = url
		v.loading = false
		return
	}

	v.url = ""
	v.loading = true
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	v.cancel = cancel
	v.done = make(chan struct{})

	go v.resolve(ctx, v.gen, id, v.done)
}

func (v *Viewer) resolve(ctx context.Context, gen uint64, id int64, done chan struct{}) {
	url, err := v.cache.ResolveURL(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || gen != v.gen {
		metrics.ViewerStaleResultsDiscarded.Inc()
		logging.Debug("Discarding stale viewer result for photo %d", id)
		return
	}

	v.loading = false
	if err != nil {
		logging.Warn("Viewer failed to load photo %d: %v", id, err)
		v.err = err
	} else {
		v.url = url
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.done == done {
		close(done)
		v.done = nil
	}
}

// abandonLocked cancels the pending resolution and releases its waiters.
func (v *Viewer) abandonLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.done != nil {
		close(v.done)
		v.done = nil
	}
}

func (v *Viewer) resetTouchLocked() {
	v.touching = false
	v.touchStart = 0
	v.touchEnd = 0
	v.touchMoved = false
}
