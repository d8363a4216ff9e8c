// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads the optional TOML file named by GALLERY_CONFIG and
// then lets environment variables override it:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - PHOTOS_ENDPOINT: Directory photos endpoint (required)
//   - VIDEOS_ENDPOINT: Directory videos endpoint (optional)
//   - CACHE_DIR: Path to cache directory for thumbnails (default: /cache)
//   - DATABASE_DIR: Path to the listing store directory (default: /database)
//   - BATCH_SIZE: Photos per grid batch (default: 30)
//   - CACHE_TTL: Listing freshness window (default: 5m)
//   - LAZY_MARGIN: Tile visibility margin in pixels (default: 200)
//   - SWIPE_THRESHOLD: Viewer swipe threshold in pixels (default: 50)
//   - FETCH_TIMEOUT: Directory request timeout (default: 10s)
//   - DIRECTORY_RATE_LIMIT: Directory requests per second, 0 for none (default: 0)
//   - SESSION_TTL: Gallery session idle lifetime (default: 30m)
//   - ADMIN_PASSWORD_HASH: bcrypt hash of the admin secret; admin is off when unset
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_IMAGE_REQUESTS: Log successful thumbnail and download responses (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// The TOML keys are the lower-case variable names (batch_size, cache_ttl, ...).
// A value that does not parse is logged and replaced by its default.
//
// MEMORY_LIMIT and MEMORY_RATIO are read separately by the memory package.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// [LogDatabaseInit], [LogCacheInit], [LogThumbnailInit], [LogHTTPRoutes],
// [LogServerStarted], [LogShutdownInitiated] and [LogShutdownComplete]
// print the sectioned startup and shutdown log.
package startup
