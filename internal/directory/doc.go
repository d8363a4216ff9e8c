// Package directory is the HTTP client for the remote photo/video
// Directory that owns authoritative gallery metadata and ordering.
//
// The Directory contract:
//
//	GET    {photos}            -> {"photos": [...]} ordered by display_order
//	GET    {photos}?id={id}    -> single photo with url, thumbnail_url, alt
//	POST   {photos}            -> {"success": bool, "id": n, "error": "..."}
//	PUT    {photos}            <- {"orders": [{"id", "display_order"}]}
//	DELETE {photos}?id={id}
//	GET    {videos}            -> {"videos": [...]}
//	PUT    {videos}            <- {"id", "url"|null}
//
// Failures are reported with the sentinel errors [ErrNetwork], [ErrDecode]
// and [ErrNotFound]; callers decide how to degrade. The client never
// retries. Outbound calls share a token-bucket limiter.
package directory
