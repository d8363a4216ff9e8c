// Package session keeps one gallery per visitor.
//
// A [Session] ties together a [grid.Controller], the [lazyload.Tile] of
// every displayed photo and a [viewer.Viewer], all sharing the process
// wide photo cache. The [Manager] hands out sessions keyed by a random
// UUID, extends them on every access and drops them after SESSION_TTL of
// inactivity.
package session
