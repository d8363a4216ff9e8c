// Package metrics provides Prometheus instrumentation for the wedding gallery.
//
// All metrics are prefixed with "wedding_gallery_" and registered through
// promauto at package init, so importing the package is enough to expose
// them on the metrics server.
//
// # Metric Categories
//
//   - HTTP: requests, duration and in-flight gauge, recorded by middleware
//   - Directory: outbound request counts and latency per operation
//   - Photo cache: listing hits, misses, stale and empty fallbacks, URL
//     resolutions by kind and result
//   - Store: persisted listing operations
//   - Gallery state: tile transitions, grid batches and resets, viewer
//     navigations, discarded stale resolutions, downloads, live sessions
//   - Thumbnails: generations, duration, disk cache hits and misses
//   - Admin: operations and rejected authentication
//   - Memory: heap usage against the limit and decode pauses
//   - App info: version, commit and Go version as labels on a constant gauge
//
// [Collector] refreshes gauges derived from application state on an
// interval; [InitializeMetrics] pre-creates label combinations.
package metrics
