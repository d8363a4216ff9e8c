// Package viewer implements the lightbox.
//
// A [Viewer] is opened on an ordered working set at a given photo and then
// navigates cyclically: Next from the last photo shows the first, Prev
// from the first shows the last. Keyboard bindings are Escape (close),
// ArrowLeft (prev) and ArrowRight (next). A horizontal swipe further than
// the threshold (50px) to the left goes forward, to the right goes back.
//
// Every navigation tags the image resolution it starts with a generation
// number. When a resolution completes after another navigation or after
// Close, its result is discarded, so rapid next/prev presses never show
// an image for the wrong index.
package viewer
