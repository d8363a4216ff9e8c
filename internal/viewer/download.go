package viewer

import (
	"context"
	"fmt"
	"regexp"

	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
)

// Download is a fetched copy of the current image.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

var whitespace = regexp.MustCompile(`\s`)

// Filename derives a download name from alt text: every whitespace
// character becomes a dash and ".jpg" is appended.
func Filename(alt string) string {
	if alt == "" {
		alt = "photo"
	}
	return whitespace.ReplaceAllString(alt, "-") + ".jpg"
}

// DownloadCurrent fetches the bytes of the displayed image. A failure is
// logged and kept as a dismissible notice; navigation state is untouched.
func (v *Viewer) DownloadCurrent(ctx context.Context) (*Download, error) {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return nil, ErrNotOpen
	}
	url, alt := v.url, v.alts[v.index]
	v.mu.Unlock()

	if url == "" {
		return nil, ErrNotResolved
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	data, contentType, err := v.fetcher.FetchBytes(ctx, url)
	if err != nil {
		logging.Error("Failed to download photo: %v", err)
		metrics.DownloadsTotal.WithLabelValues("error").Inc()

		v.mu.Lock()
		if v.open {
			v.notice = "Failed to download photo"
		}
		v.mu.Unlock()
		return nil, fmt.Errorf("download: %w", err)
	}

	metrics.DownloadsTotal.WithLabelValues("success").Inc()
	return &Download{
		Filename:    Filename(alt),
		ContentType: contentType,
		Data:        data,
	}, nil
}
