// Package handlers provides the gallery's HTTP API.
//
// It includes handlers for:
//   - The cached photo listing, single photos and generated thumbnails
//   - The video list, with placeholders when the Directory is down
//   - Gallery sessions: the paginated grid, lazily loaded tiles and the
//     lightbox viewer with downloads
//   - Admin pass-through to the Directory behind X-Admin-Password
//   - Health checks and build information
//
// Errors are JSON objects of the form {"error": "..."}. Directory failures
// map to 502, unknown ids and sessions to 404, malformed input to 400.
package handlers
