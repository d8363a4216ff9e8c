package directory

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every Directory round trip.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps response bodies; inline photos can be large.
	maxBodySize = 64 << 20
)

// Config configures a Client.
type Config struct {
	PhotosEndpoint string
	VideosEndpoint string
	Timeout        time.Duration
	// RateLimit is the sustained requests per second towards the Directory.
	// Zero disables limiting.
	RateLimit  float64
	HTTPClient *http.Client
}

// Client talks to the remote photo/video Directory.
type Client struct {
	photosEndpoint string
	videosEndpoint string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxBody        int64
}

// New creates a Directory client.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		photosEndpoint: cfg.PhotosEndpoint,
		videosEndpoint: cfg.VideosEndpoint,
		httpClient:     client,
		limiter:        limiter,
		maxBody:        maxBodySize,
	}
}

// ListPhotos returns the full listing ordered by display order. Ties keep
// the order in which the Directory sent them.
func (c *Client) ListPhotos(ctx context.Context) ([]Photo, error) {
	var list photoList
	if err := c.doJSON(ctx, "list_photos", http.MethodGet, c.photosEndpoint, nil, &list); err != nil {
		return nil, err
	}

	photos := list.Photos
	if photos == nil {
		photos = []Photo{}
	}
	slices.SortStableFunc(photos, func(a, b Photo) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	return photos, nil
}

// GetPhoto fetches a single photo including its URLs.
func (c *Client) GetPhoto(ctx context.Context, id int64) (Photo, error) {
	var photo Photo
	endpoint := withQuery(c.photosEndpoint, "id", strconv.FormatInt(id, 10))
	if err := c.doJSON(ctx, "get_photo", http.MethodGet, endpoint, nil, &photo); err != nil {
		return Photo{}, err
	}
	if photo.ID == 0 {
		photo.ID = id
	}
	return photo, nil
}

// CreatePhoto adds a photo and returns the id assigned by the Directory.
func (c *Client) CreatePhoto(ctx context.Context, p NewPhoto) (int64, error) {
	var resp mutationResponse
	if err := c.doJSON(ctx, "create_photo", http.MethodPost, c.photosEndpoint, p, &resp); err != nil {
		return 0, err
	}
	if !resp.Success || resp.Error != "" {
		reason := resp.Error
		if reason == "" {
			reason = "directory reported failure"
		}
		return 0, fmt.Errorf("%w: %s", ErrNetwork, reason)
	}
	return resp.ID, nil
}

// DeletePhoto removes one photo.
func (c *Client) DeletePhoto(ctx context.Context, id int64) error {
	endpoint := withQuery(c.photosEndpoint, "id", strconv.FormatInt(id, 10))
	return c.doJSON(ctx, "delete_photo", http.MethodDelete, endpoint, nil, nil)
}

// ReorderPhotos applies a bulk display-order update. The Directory reports
// no per-item result.
func (c *Client) ReorderPhotos(ctx context.Context, orders []Order) error {
	return c.doJSON(ctx, "reorder_photos", http.MethodPut, c.photosEndpoint, reorderRequest{Orders: orders}, nil)
}

// ListVideos returns the video listing ordered by display order.
func (c *Client) ListVideos(ctx context.Context) ([]Video, error) {
	var list videoList
	if err := c.doJSON(ctx, "list_videos", http.MethodGet, c.videosEndpoint, nil, &list); err != nil {
		return nil, err
	}

	videos := list.Videos
	if videos == nil {
		videos = []Video{}
	}
	slices.SortStableFunc(videos, func(a, b Video) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	return videos, nil
}

// UpdateVideo sets or, with a nil url, clears a video's URL.
func (c *Client) UpdateVideo(ctx context.Context, id int64, videoURL *string) error {
	return c.doJSON(ctx, "update_video", http.MethodPut, c.videosEndpoint, videoUpdate{ID: id, URL: videoURL}, nil)
}

// FetchBytes downloads the content behind an image URL. Inline data: URLs
// are decoded locally without a network round trip.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return decodeDataURL(rawURL)
	}

	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe("fetch_bytes", "error", start)
		return nil, "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observe("fetch_bytes", "error", start)
		return nil, "", fmt.Errorf("%w: GET %s returned %d", ErrNetwork, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		observe("fetch_bytes", "error", start)
		return nil, "", fmt.Errorf("%w: failed to read body: %v", ErrNetwork, err)
	}

	if int64(len(data)) > c.maxBody {
		observe("fetch_bytes", "error", start)
		return nil, "", fmt.Errorf("%w: image exceeds %d bytes", ErrNetwork, c.maxBody)
	}

	observe("fetch_bytes", "success", start)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, endpoint string, body, out any) error {
	start := time.Now()

	if endpoint == "" {
		observe(operation, "error", start)
		return fmt.Errorf("%w: no endpoint configured for %s", ErrNetwork, operation)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		observe(operation, "error", start)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		observe(operation, "error", start)
		return fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	logging.Debug("Directory %s: %s %s", operation, method, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe(operation, "error", start)
		return fmt.Errorf("%w: %s: %v", ErrNetwork, operation, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		observe(operation, "not_found", start)
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observe(operation, "error", start)
		return fmt.Errorf("%w: %s returned %d", ErrNetwork, operation, resp.StatusCode)
	}

	if out == nil {
		observe(operation, "success", start)
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(out); err != nil {
		observe(operation, "decode_error", start)
		return fmt.Errorf("%w: %s: %v", ErrDecode, operation, err)
	}

	observe(operation, "success", start)
	return nil
}

func observe(operation, status string, start time.Time) {
	metrics.DirectoryRequestsTotal.WithLabelValues(operation, status).Inc()
	metrics.DirectoryRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func withQuery(endpoint, key, value string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// decodeDataURL handles the data:[<mediatype>][;base64],<data> form the
// Directory uses for photos that were never migrated to the CDN.
func decodeDataURL(raw string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data URL", ErrDecode)
	}

	contentType := "text/plain"
	isBase64 := false
	for i, part := range strings.Split(header, ";") {
		switch {
		case i == 0 && part != "":
			contentType = part
		case part == "base64":
			isBase64 = true
		}
	}

	if !isBase64 {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return []byte(decoded), contentType, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, contentType, nil
}
