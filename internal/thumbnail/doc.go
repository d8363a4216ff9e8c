// Package thumbnail generates grid thumbnails for photos whose metadata
// carries none.
//
// The full image is resolved through the photo cache, downloaded, decoded
// (JPEG, PNG, GIF, WebP), fitted into a 400x400 box with Lanczos
// resampling and stored as JPEG under the cache directory, named by photo
// id. Concurrent requests for the same photo share one generation.
package thumbnail
