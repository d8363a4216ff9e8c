// Package photocache is the gallery's shared photo cache.
//
// A [Cache] is constructed explicitly, one per application, and injected
// into every consumer. It owns two kinds of state:
//
//   - the full Directory listing with a freshness window (5 minutes by
//     default), mirrored into an optional persisted [Store] so a restarted
//     server can fall back to stale data while the Directory is down;
//   - per-photo resolved URLs, memoized for the Cache's lifetime and never
//     re-resolved, since content behind an id is treated as immutable.
//
// Listing failures never surface to callers: [Cache.GetAll] degrades to
// stale data, then to an empty listing. Resolution failures are returned
// to the caller, which owns the visual failure state.
package photocache
