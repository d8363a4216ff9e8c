// Package workers sizes the gallery's bounded worker pools.
//
// Two pools exist: cache warmup fans URL resolutions out to the Directory
// (network-bound, [ForIO]) and the thumbnailer bounds concurrent image
// decodes ([ForCPU]). Both follow GOMAXPROCS so a CPU-limited container
// gets proportionally fewer workers.
//
// Set GALLERY_WORKERS to pin the count:
//
//	GALLERY_WORKERS=4 gallery serve
package workers
