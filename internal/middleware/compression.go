package middleware

import (
	"net/http"

	"wedding-gallery/internal/logging"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int
	// Level is a gzip level from gzip.BestSpeed to gzip.BestCompression.
	Level int
	// ContentTypes lists the media types that get compressed. Photo bytes
	// are already compressed and pass through untouched.
	ContentTypes []string
}

func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

// Compression gzips listing, grid and viewer JSON for clients that accept
// it. An invalid level falls back to gzip.DefaultCompression.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
		gzhttp.ContentTypes(config.ContentTypes),
	)
	if err != nil {
		logging.Warn("Compression config rejected (%v), using default level", err)
		wrap, _ = gzhttp.NewWrapper(
			gzhttp.MinSize(config.MinSize),
			gzhttp.ContentTypes(config.ContentTypes),
		)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}
