package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"
	"wedding-gallery/internal/workers"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

const (
	// Size is the bounding box thumbnails are fitted into.
	Size = 400

	// MaxImagePixels is the largest source image we'll decode.
	// A 50MP image would be ~50,000,000 pixels, which uses ~200MB in RGBA
	MaxImagePixels = 50_000_000

	// GenerateTimeout bounds one shared generation, independent of the
	// requests waiting on it.
	GenerateTimeout = 30 * time.Second
)

// ErrDisabled is returned when thumbnail generation is switched off.
var ErrDisabled = errors.New("thumbnails disabled")

// Resolver turns a photo id into its full-size image URL.
type Resolver interface {
	ResolveURL(ctx context.Context, id int64) (string, error)
}

// Fetcher downloads image bytes.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, string, error)
}

// Gate holds back decoding under memory pressure.
type Gate interface {
	Wait(ctx context.Context) error
}

type Generator struct {
	resolver Resolver
	fetcher  Fetcher
	cacheDir string
	enabled  bool
	timeout  time.Duration
	group    singleflight.Group

	// decodes bounds concurrent decode+resize work
	decodes chan struct{}
	gate    Gate
}

// NewGenerator creates a generator caching into cacheDir. It disables
// itself when cacheDir cannot be created or written.
func NewGenerator(resolver Resolver, fetcher Fetcher, cacheDir string, enabled bool) *Generator {
	g := &Generator{
		resolver: resolver,
		fetcher:  fetcher,
		cacheDir: cacheDir,
		enabled:  enabled,
		timeout:  GenerateTimeout,
		decodes:  make(chan struct{}, workers.ForCPU(8)),
	}
	if !enabled {
		logging.Debug("Thumbnail generator: disabled")
		return g
	}
	if err := checkWritable(cacheDir); err != nil {
		logging.Warn("Thumbnail generator: cache dir %s not writable, disabling: %v", cacheDir, err)
		g.enabled = false
		return g
	}
	logging.Debug("Thumbnail generator: enabled, cache dir: %s", cacheDir)
	return g
}

// SetGate makes decoding wait on gate. Call before serving requests.
func (g *Generator) SetGate(gate Gate) {
	g.gate = gate
}

func (g *Generator) IsEnabled() bool {
	return g.enabled
}

// Get returns the JPEG thumbnail of photo id, generating and caching it
// on first request.
func (g *Generator) Get(ctx context.Context, id int64) ([]byte, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}

	cachePath := g.path(id)
	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	// Generation outlives any single waiter so a disconnecting client
	// does not fail the others sharing it.
	ch := g.group.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return g.generate(gctx, id, cachePath)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Remove deletes the cached thumbnail of a deleted photo.
func (g *Generator) Remove(id int64) {
	if !g.enabled {
		return
	}
	if err := os.Remove(g.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Failed to remove thumbnail for photo %d: %v", id, err)
	}
}

func (g *Generator) generate(ctx context.Context, id int64, cachePath string) ([]byte, error) {
	start := time.Now()
	logging.Debug("Thumbnail generating: photo %d", id)

	data, err := g.render(ctx, id)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("thumbnail generation failed: %w", err)
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())

	if err := writeAtomic(cachePath, data); err != nil {
		logging.Warn("Failed to cache thumbnail %s: %v", cachePath, err)
	} else {
		logging.Debug("Thumbnail cached: %s", cachePath)
	}
	return data, nil
}

func (g *Generator) render(ctx context.Context, id int64) ([]byte, error) {
	url, err := g.resolver.ResolveURL(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, _, err := g.fetcher.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	if g.gate != nil {
		if err := g.gate.Wait(ctx); err != nil {
			return nil, err
		}
	}

	select {
	case g.decodes <- struct{}{}:
		defer func() { <-g.decodes }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: photo %d: %v", directory.ErrDecode, id, err)
	}
	if cfg.Width*cfg.Height > MaxImagePixels {
		return nil, fmt.Errorf("%w: photo %d is %dx%d, too large", directory.ErrDecode, id, cfg.Width, cfg.Height)
	}
	logging.Debug("Decoding %s image %dx%d for photo %d", format, cfg.Width, cfg.Height, id)

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: photo %d: %v", directory.ErrDecode, id, err)
	}

	thumb := imaging.Fit(img, Size, Size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) path(id int64) string {
	return filepath.Join(g.cacheDir, strconv.FormatInt(id, 10)+".jpg")
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// writeAtomic writes through a temp file so readers never see a partial thumbnail.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".thumb-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
