// Package lazyload defers loading of grid images until they come near the
// viewport.
//
// An [Observer] is an explicit visibility subscription: the caller feeds it
// [Entry] reports and it fires its callback for every entry that intersects
// the viewport or lies within the margin (200px by default). Dispose ends
// the subscription.
//
// A [Tile] owns one image and walks the state machine
//
//	Idle -> Loading -> Loaded | Failed
//
// A tile whose source already carries a URL is Loaded on Mount and never
// observes visibility. Otherwise the first in-margin entry starts one
// resolution on its own goroutine; later entries are ignored and failures
// are final. Unmount and SetSource bump the tile's generation so results
// that arrive afterwards are dropped.
package lazyload
