// Package grid implements the paginated photo grid.
//
// A [Controller] reveals its list in batches of 30 (configurable). Mount
// shows the first batch straight away; every later batch is triggered by
// the sentinel, a zero-margin [lazyload.Observer] standing for the element
// after the last displayed row. The sentinel is replaced after every
// batch and dropped once the whole list is displayed, so an N item list
// is fully revealed after ceil(N/batch) batches and further triggers are
// no-ops.
package grid
