package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Directory client metrics
var (
	DirectoryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_directory_requests_total",
			Help: "Total number of requests sent to the photo/video directory",
		},
		[]string{"operation", "status"},
	)

	DirectoryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_gallery_directory_request_duration_seconds",
			Help:    "Directory request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

// Photo cache metrics
var (
	ListingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_listing_cache_hits_total",
			Help: "Listing requests served from a fresh cache entry",
		},
	)

	ListingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_listing_cache_misses_total",
			Help: "Listing requests that required a directory fetch",
		},
	)

	ListingStaleFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_listing_stale_fallbacks_total",
			Help: "Directory failures answered from a stale listing",
		},
	)

	ListingEmptyFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_listing_empty_fallbacks_total",
			Help: "Directory failures answered with an empty listing because no cache existed",
		},
	)

	ListingPhotos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_gallery_listing_photos",
			Help: "Number of photos in the most recently cached listing",
		},
	)

	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_resolve_total",
			Help: "URL resolutions by kind (full/thumbnail) and result (memo/resolved/error)",
		},
		[]string{"kind", "result"},
	)
)

// Listing store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_store_operations_total",
			Help: "Persisted listing store operations",
		},
		[]string{"operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_gallery_store_operation_duration_seconds",
			Help:    "Persisted listing store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Gallery UI state metrics
var (
	TileTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_tile_transitions_total",
			Help: "Lazy tile state transitions by target state",
		},
		[]string{"state"},
	)

	GridBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_grid_batches_total",
			Help: "Batches appended to gallery grids",
		},
	)

	GridResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_grid_resets_total",
			Help: "Grid pagination resets caused by a listing identity change",
		},
	)

	ViewerNavigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_viewer_navigations_total",
			Help: "Lightbox navigations by action",
		},
		[]string{"action"},
	)

	ViewerStaleResultsDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_viewer_stale_results_discarded_total",
			Help: "Image resolutions dropped because the viewer moved on or closed",
		},
	)

	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_downloads_total",
			Help: "Photo downloads by status",
		},
		[]string{"status"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_gallery_sessions_active",
			Help: "Number of live gallery sessions",
		},
	)

	SessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_sessions_expired_total",
			Help: "Gallery sessions removed after inactivity",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wedding_gallery_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)
)

// Admin metrics
var (
	AdminOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_gallery_admin_operations_total",
			Help: "Admin operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	AdminAuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_admin_auth_failures_total",
			Help: "Rejected admin requests",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_gallery_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_gallery_memory_paused",
			Help: "Whether thumbnail decoding is paused for memory pressure (1 = paused)",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_gallery_memory_pauses_total",
			Help: "Times thumbnail decoding was paused for memory pressure",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wedding_gallery_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
