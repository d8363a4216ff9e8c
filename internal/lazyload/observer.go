package lazyload

import "sync"

// DefaultMargin is the distance in pixels from the viewport at which an
// element counts as visible.
const DefaultMargin = 200

// Entry is one visibility report for an observed element.
type Entry struct {
	// Intersecting is true when the element overlaps the viewport.
	Intersecting bool `json:"intersecting"`
	// Distance is the gap in pixels between the element and the nearest
	// viewport edge. Ignored when Intersecting is set.
	Distance int `json:"distance"`
}

// Observer is an explicit visibility subscription. The callback fires for
// every entry that intersects or lies within the margin, until Dispose.
type Observer struct {
	mu       sync.Mutex
	margin   int
	callback func(Entry)
	disposed bool
}

// NewObserver creates an active subscription. A negative margin is treated as zero.
func NewObserver(margin int, callback func(Entry)) *Observer {
	if margin < 0 {
		margin = 0
	}
	return &Observer{margin: margin, callback: callback}
}

// Margin returns the configured margin in pixels.
func (o *Observer) Margin() int {
	return o.margin
}

// Notify delivers a visibility entry and reports whether the callback ran.
// The callback runs without the observer lock held, so it may Dispose.
func (o *Observer) Notify(e Entry) bool {
	o.mu.Lock()
	if o.disposed || !o.inRange(e) {
		o.mu.Unlock()
		return false
	}
	cb := o.callback
	o.mu.Unlock()

	if cb != nil {
		cb(e)
	}
	return true
}

// Dispose ends the subscription. Safe to call more than once.
func (o *Observer) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disposed = true
	o.callback = nil
}

// Disposed reports whether Dispose was called.
func (o *Observer) Disposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

func (o *Observer) inRange(e Entry) bool {
	if e.Intersecting {
		return true
	}
	return e.Distance >= 0 && e.Distance <= o.margin
}
