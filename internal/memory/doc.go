// Package memory keeps thumbnail generation inside the container's memory
// budget.
//
// ConfigureFromEnv derives GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO
// when GOMEMLIMIT itself is not set. Monitor samples the heap and pauses
// callers of Wait while usage is above the critical watermark; the
// thumbnail generator waits on it before decoding a source image, which
// is the only allocation in the server that scales with photo size.
package memory
