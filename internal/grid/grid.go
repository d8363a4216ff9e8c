package grid

import (
	"slices"
	"sync"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/lazyload"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
)

// DefaultBatchSize is the number of photos revealed per batch.
const DefaultBatchSize = 30

// View is a snapshot of the grid.
type View struct {
	Photos     []directory.Photo `json:"photos"`
	Displayed  int               `json:"displayed"`
	Total      int               `json:"total"`
	BatchIndex int               `json:"batch_index"`
	BatchSize  int               `json:"batch_size"`
	Complete   bool              `json:"complete"`
	Sentinel   bool              `json:"sentinel"`
}

// Controller reveals an ordered photo list in fixed-size batches.
//
// The displayed prefix only grows while the list identity (its id
// sequence) stays the same; a new identity resets pagination.
type Controller struct {
	batchSize int

	mu         sync.Mutex
	items      []directory.Photo
	displayed  int
	batchIndex int
	mounted    bool
	sentinel   *lazyload.Observer
	onAppend   func(batch []directory.Photo)
}

// New creates a controller. A non-positive batchSize selects DefaultBatchSize.
func New(batchSize int) *Controller {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Controller{batchSize: batchSize}
}

// OnAppend registers fn to receive every newly displayed batch. fn runs
// without the controller lock held.
func (c *Controller) OnAppend(fn func(batch []directory.Photo)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAppend = fn
}

// Mount attaches the controller to items and reveals the first batch
// without waiting for a sentinel intersection.
func (c *Controller) Mount(items []directory.Photo) {
	c.mu.Lock()
	c.items = slices.Clone(items)
	c.displayed = 0
	c.batchIndex = 0
	c.mounted = true
	batch := c.appendLocked()
	c.resetSentinelLocked()
	hook := c.onAppend
	c.mu.Unlock()

	notify(hook, batch)
}

// LoadMoreBatch reveals the next batch and returns it. When every item is
// already displayed it does nothing and returns nil.
func (c *Controller) LoadMoreBatch() []directory.Photo {
	c.mu.Lock()
	batch := c.appendLocked()
	if batch != nil {
		c.resetSentinelLocked()
	}
	hook := c.onAppend
	c.mu.Unlock()

	notify(hook, batch)
	return batch
}

// Sentinel returns the observer watching the end of the grid, or nil when
// the grid is complete or unmounted.
func (c *Controller) Sentinel() *lazyload.Observer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sentinel
}

// SetItems replaces the underlying list and reports whether pagination was
// reset. An unchanged id sequence refreshes metadata in place; any other
// change starts over from the first batch.
func (c *Controller) SetItems(items []directory.Photo) bool {
	c.mu.Lock()
	if sameIdentity(c.items, items) {
		c.items = slices.Clone(items)
		c.mu.Unlock()
		return false
	}

	logging.Debug("Grid list changed (%d -> %d photos), resetting pagination", len(c.items), len(items))
	metrics.GridResetsTotal.Inc()

	c.items = slices.Clone(items)
	c.displayed = 0
	c.batchIndex = 0
	var batch []directory.Photo
	if c.mounted {
		batch = c.appendLocked()
		c.resetSentinelLocked()
	}
	hook := c.onAppend
	c.mu.Unlock()

	notify(hook, batch)
	return true
}

// Unmount disposes the sentinel. The displayed state is kept.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.disposeSentinelLocked()
}

// Displayed returns the currently revealed prefix of the list.
func (c *Controller) Displayed() []directory.Photo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items[:c.displayed])
}

// Items returns the full underlying list.
func (c *Controller) Items() []directory.Photo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Complete reports whether every item is displayed.
func (c *Controller) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayed >= len(c.items)
}

// View returns a snapshot of the grid.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Photos:     slices.Clone(c.items[:c.displayed]),
		Displayed:  c.displayed,
		Total:      len(c.items),
		BatchIndex: c.batchIndex,
		BatchSize:  c.batchSize,
		Complete:   c.displayed >= len(c.items),
		Sentinel:   c.sentinel != nil,
	}
}

func (c *Controller) appendLocked() []directory.Photo {
	if c.displayed >= len(c.items) {
		return nil
	}
	end := min(c.displayed+c.batchSize, len(c.items))
	batch := slices.Clone(c.items[c.displayed:end])
	c.displayed = end
	c.batchIndex++
	metrics.GridBatchesTotal.Inc()
	return batch
}

// resetSentinelLocked replaces the sentinel after the displayed set or the
// total changed. No sentinel is kept once the grid is complete.
func (c *Controller) resetSentinelLocked() {
	c.disposeSentinelLocked()
	if !c.mounted || c.displayed >= len(c.items) {
		return
	}
	c.sentinel = lazyload.NewObserver(0, func(lazyload.Entry) {
		c.onSentinel()
	})
}

func (c *Controller) disposeSentinelLocked() {
	if c.sentinel != nil {
		c.sentinel.Dispose()
		c.sentinel = nil
	}
}

func (c *Controller) onSentinel() {
	c.mu.Lock()
	active := c.mounted && c.displayed < len(c.items)
	c.mu.Unlock()
	if active {
		c.LoadMoreBatch()
	}
}

func notify(hook func([]directory.Photo), batch []directory.Photo) {
	if hook != nil && len(batch) > 0 {
		hook(batch)
	}
}

func sameIdentity(a, b []directory.Photo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
