package photocache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"wedding-gallery/internal/database"
	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
	"wedding-gallery/internal/workers"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// ListingKey is the fixed key of the persisted listing entry.
	ListingKey = "wedding_photos_cache"

	// DefaultTTL is the freshness window of the cached listing.
	DefaultTTL = 5 * time.Minute

	// DefaultFetchTimeout bounds a shared listing refresh.
	DefaultFetchTimeout = 10 * time.Second
)

// ErrNoURL is returned when neither the listing nor the single-photo
// lookup carries a usable image URL.
var ErrNoURL = errors.New("photo has no image url")

// Directory is the subset of the Directory client the cache needs.
type Directory interface {
	ListPhotos(ctx context.Context) ([]directory.Photo, error)
	GetPhoto(ctx context.Context, id int64) (directory.Photo, error)
}

// Store persists the listing entry across restarts.
type Store interface {
	LoadListing(ctx context.Context, key string) (*database.Listing, error)
	SaveListing(ctx context.Context, key string, listing database.Listing) error
}

// Entry is one memoized URL resolution. Entries are never modified after insertion.
type Entry struct {
	Key         int64
	ResolvedURL string
	InsertedAt  time.Time
}

// Cache shields callers from redundant Directory fetches. It holds the
// full listing with a freshness window plus per-photo resolved URLs that
// live as long as the Cache itself.
type Cache struct {
	dir   Directory
	store Store
	ttl   time.Duration
	now   func() time.Time

	fetchTimeout time.Duration

	mu         sync.RWMutex
	listing    *database.Listing
	storeTried bool
	full       map[int64]Entry
	thumbs     map[int64]Entry
	// forgets counts Forget calls per id; resolutions that started
	// before a Forget are not memoized.
	forgets map[int64]uint64

	group       singleflight.Group
	warmWorkers int
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithStore persists the listing entry in store.
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithWarmWorkers bounds the concurrency of Warm.
func WithWarmWorkers(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.warmWorkers = n
		}
	}
}

// New creates a Cache in front of dir.
func New(dir Directory, opts ...Option) *Cache {
	c := &Cache{
		dir:         dir,
		ttl:         DefaultTTL,
		now:         time.Now,
		full:        make(map[int64]Entry),
		thumbs:      make(map[int64]Entry),
		forgets:     make(map[int64]uint64),
		warmWorkers: workers.ForIO(16),

		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAll returns the photo listing. A cached listing younger than the TTL
// is returned as is; otherwise the Directory is asked. When the Directory
// fails, any cached listing is returned regardless of age, and with no
// cache at all the result is empty. GetAll never fails.
func (c *Cache) GetAll(ctx context.Context) []directory.Photo {
	cached := c.cachedListing(ctx)
	if cached != nil && c.now().Sub(cached.Timestamp) < c.ttl {
		metrics.ListingCacheHits.Inc()
		return slices.Clone(cached.Photos)
	}

	metrics.ListingCacheMisses.Inc()

	v, err := c.shared(ctx, "listing", func(ctx context.Context) (interface{}, error) {
		photos, err := c.dir.ListPhotos(ctx)
		if err != nil {
			return nil, err
		}
		c.storeListing(ctx, photos)
		return photos, nil
	})
	if err == nil {
		return slices.Clone(v.([]directory.Photo))
	}

	logging.Error("Failed to fetch photos: %v", err)

	if cached := c.cachedListing(ctx); cached != nil {
		metrics.ListingStaleFallbacks.Inc()
		logging.Warn("Serving stale listing from %s (%d photos)", cached.Timestamp.Format(time.RFC3339), len(cached.Photos))
		return slices.Clone(cached.Photos)
	}

	metrics.ListingEmptyFallbacks.Inc()
	return []directory.Photo{}
}

// GetByID looks a photo up in the listing returned by GetAll.
func (c *Cache) GetByID(ctx context.Context, id int64) (directory.Photo, error) {
	for _, p := range c.GetAll(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return directory.Photo{}, fmt.Errorf("photo %d: %w", id, directory.ErrNotFound)
}

// ResolveURL returns the full-resolution URL of a photo, preferring the
// CDN copy. The first successful resolution of an id is memoized for the
// lifetime of the Cache and never re-resolved.
func (c *Cache) ResolveURL(ctx context.Context, id int64) (string, error) {
	if url, ok := c.Resolved(id); ok {
		metrics.ResolveTotal.WithLabelValues("full", "memo").Inc()
		return url, nil
	}
	mark := c.forgetMark(id)

	photo, err := c.GetByID(ctx, id)
	if err != nil {
		metrics.ResolveTotal.WithLabelValues("full", "error").Inc()
		return "", err
	}

	url := photo.FullURL()
	if url == "" {
		// The public listing omits URLs; ask for the single photo.
		single, err := c.dir.GetPhoto(ctx, id)
		if err != nil {
			metrics.ResolveTotal.WithLabelValues("full", "error").Inc()
			return "", err
		}
		url = single.FullURL()
	}
	if url == "" {
		metrics.ResolveTotal.WithLabelValues("full", "error").Inc()
		return "", fmt.Errorf("photo %d: %w", id, ErrNoURL)
	}

	metrics.ResolveTotal.WithLabelValues("full", "resolved").Inc()
	return c.memoize(c.full, id, url, mark), nil
}

// ResolveThumbnail returns the URL a grid tile should display: the CDN
// thumbnail, then the original thumbnail, then the full image.
func (c *Cache) ResolveThumbnail(ctx context.Context, id int64) (string, error) {
	c.mu.RLock()
	entry, ok := c.thumbs[id]
	c.mu.RUnlock()
	if ok {
		metrics.ResolveTotal.WithLabelValues("thumbnail", "memo").Inc()
		return entry.ResolvedURL, nil
	}
	mark := c.forgetMark(id)

	photo, err := c.GetByID(ctx, id)
	if err != nil {
		metrics.ResolveTotal.WithLabelValues("thumbnail", "error").Inc()
		return "", err
	}

	url := photo.Thumbnail()
	if url == "" && photo.FullURL() == "" {
		single, err := c.dir.GetPhoto(ctx, id)
		if err != nil {
			metrics.ResolveTotal.WithLabelValues("thumbnail", "error").Inc()
			return "", err
		}
		url = single.Thumbnail()
		if url == "" {
			url = single.FullURL()
		}
		if url != "" && single.FullURL() != "" {
			c.memoize(c.full, id, single.FullURL(), mark)
		}
	}
	if url == "" {
		url = photo.FullURL()
	}
	if url == "" {
		metrics.ResolveTotal.WithLabelValues("thumbnail", "error").Inc()
		return "", fmt.Errorf("photo %d: %w", id, ErrNoURL)
	}

	metrics.ResolveTotal.WithLabelValues("thumbnail", "resolved").Inc()
	return c.memoize(c.thumbs, id, url, mark), nil
}

// Resolved returns the memoized full URL of id without any I/O.
func (c *Cache) Resolved(id int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.full[id]
	return entry.ResolvedURL, ok
}

// Entry returns the memoized full-URL entry of id.
func (c *Cache) Entry(id int64) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.full[id]
	return entry, ok
}

// Forget drops the memoized URLs of a deleted photo. Resolutions of id
// already in flight complete but are not memoized.
func (c *Cache) Forget(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.full, id)
	delete(c.thumbs, id)
	c.forgets[id]++
}

// Invalidate expires the listing entry so the next GetAll fetches from the
// Directory. The photos are kept as the stale fallback, and memoized URLs
// are untouched.
func (c *Cache) Invalidate(ctx context.Context) {
	cached := c.cachedListing(ctx)
	if cached == nil {
		return
	}
	expired := &database.Listing{Photos: cached.Photos}

	c.mu.Lock()
	swapped := c.listing == cached
	if swapped {
		c.listing = expired
	}
	c.mu.Unlock()

	// A refresh that landed meanwhile is newer than what was invalidated.
	if !swapped || c.store == nil {
		return
	}
	if err := c.store.SaveListing(ctx, ListingKey, *expired); err != nil {
		logging.Warn("Cache invalidation failed to expire persisted listing: %v", err)
	}
}

// Len returns the number of photos in the cached listing, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.listing == nil {
		return 0
	}
	return len(c.listing.Photos)
}

// WarmResult summarizes a Warm run.
type WarmResult struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// Warm resolves the full URL of every id concurrently. Failures are
// counted, not returned; only cancellation of ctx is reported as an error.
func (c *Cache) Warm(ctx context.Context, ids []int64) (WarmResult, error) {
	var resolved, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.warmWorkers)

	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := c.ResolveURL(gctx, id); err != nil {
				logging.Debug("Warm: photo %d: %v", id, err)
				failed.Add(1)
				return nil
			}
			resolved.Add(1)
			return nil
		})
	}

	_ = g.Wait()
	result := WarmResult{Resolved: int(resolved.Load()), Failed: int(failed.Load())}
	return result, ctx.Err()
}

// shared runs fn once for all concurrent callers of key. fn gets a context
// detached from the first caller's cancellation and bounded by the fetch
// timeout; each caller stops waiting when its own ctx is done.
func (c *Cache) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) forgetMark(id int64) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.forgets[id]
}

// memoize inserts url for id unless an entry already exists, and returns
// the stored URL. The first insertion wins. Nothing is stored when id was
// forgotten after mark was taken.
func (c *Cache) memoize(m map[int64]Entry, id int64, url string, mark uint64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.forgets[id] != mark {
		return url
	}
	if existing, ok := m[id]; ok {
		return existing.ResolvedURL
	}
	m[id] = Entry{Key: id, ResolvedURL: url, InsertedAt: c.now()}
	return url
}

// cachedListing returns the in-memory listing, loading it from the store
// the first time. Store failures are logged and treated as a miss.
func (c *Cache) cachedListing(ctx context.Context) *database.Listing {
	c.mu.RLock()
	listing, tried := c.listing, c.storeTried
	c.mu.RUnlock()

	if listing != nil || tried || c.store == nil {
		return listing
	}

	stored, err := c.store.LoadListing(ctx, ListingKey)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeTried = true
	if err != nil {
		if !errors.Is(err, database.ErrListingNotFound) {
			logging.Warn("Cache read failed: %v", err)
		}
		return c.listing
	}
	if c.listing == nil {
		c.listing = stored
	}
	return c.listing
}

func (c *Cache) storeListing(ctx context.Context, photos []directory.Photo) {
	listing := &database.Listing{
		Photos:    slices.Clone(photos),
		Timestamp: c.now(),
	}

	c.mu.Lock()
	c.listing = listing
	c.storeTried = true
	c.mu.Unlock()

	metrics.ListingPhotos.Set(float64(len(photos)))

	if c.store == nil {
		return
	}
	if err := c.store.SaveListing(ctx, ListingKey, *listing); err != nil {
		logging.Warn("Cache write failed: %v", err)
	}
}
