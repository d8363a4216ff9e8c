package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wedding-gallery/internal/logging"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogImages       bool
	LogHealthChecks bool

	PhotosEndpoint     string
	VideosEndpoint     string
	FetchTimeout       time.Duration
	DirectoryRateLimit float64

	CacheDir    string
	DatabaseDir string
	CacheTTL    time.Duration

	BatchSize      int
	LazyMargin     int
	SwipeThreshold int
	SessionTTL     time.Duration

	AdminPasswordHash string

	DatabasePath string
	ThumbnailDir string

	// Set by LoadConfig once ThumbnailDir proves writable.
	ThumbnailsEnabled bool
}

// FileConfig is the layout of the optional TOML file named by
// GALLERY_CONFIG. Environment variables take precedence over it.
type FileConfig struct {
	Port               string  `toml:"port"`
	MetricsPort        string  `toml:"metrics_port"`
	MetricsEnabled     *bool   `toml:"metrics_enabled"`
	PhotosEndpoint     string  `toml:"photos_endpoint"`
	VideosEndpoint     string  `toml:"videos_endpoint"`
	CacheDir           string  `toml:"cache_dir"`
	DatabaseDir        string  `toml:"database_dir"`
	BatchSize          int     `toml:"batch_size"`
	CacheTTL           string  `toml:"cache_ttl"`
	LazyMargin         int     `toml:"lazy_margin"`
	SwipeThreshold     int     `toml:"swipe_threshold"`
	FetchTimeout       string  `toml:"fetch_timeout"`
	DirectoryRateLimit float64 `toml:"directory_rate_limit"`
	SessionTTL         string  `toml:"session_ttl"`
	AdminPasswordHash  string  `toml:"admin_password_hash"`
	LogImages          *bool   `toml:"log_image_requests"`
	LogHealthChecks    *bool   `toml:"log_health_checks"`
}

// ReadConfigFile decodes a TOML configuration file. An empty path yields
// an empty FileConfig.
func ReadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	if path == "" {
		return fc, nil
	}
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.Warn("  Unknown key in %s: %s", path, key.String())
	}
	return fc, nil
}

// LoadConfig reads GALLERY_CONFIG, layers the environment on top, prepares
// the database and thumbnail directories and logs the result.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	section("CONFIGURATION")

	configFile := os.Getenv("GALLERY_CONFIG")
	fc, err := ReadConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		logging.Info("  GALLERY_CONFIG:       %s", configFile)
	}

	config, err := Resolve(fc)
	if err != nil {
		return nil, err
	}
	logConfig(config)

	section("DIRECTORY SETUP")
	if err := prepareDir(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory %s unusable: %w", config.DatabaseDir, err)
	}
	logging.Info("  [OK] Database directory: %s", config.DatabaseDir)

	config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")
	logFeatures(config)

	return config, nil
}

// Resolve layers environment variables over fc and built-in defaults and
// validates the result. It does not touch the filesystem.
func Resolve(fc FileConfig) (*Config, error) {
	cacheDir, err := filepath.Abs(getEnv("CACHE_DIR", orDefault(fc.CacheDir, "/cache")))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	databaseDir, err := filepath.Abs(getEnv("DATABASE_DIR", orDefault(fc.DatabaseDir, "/database")))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}

	config := &Config{
		Port:            getEnv("PORT", orDefault(fc.Port, "8080")),
		MetricsPort:     getEnv("METRICS_PORT", orDefault(fc.MetricsPort, "9090")),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", pickBool(fc.MetricsEnabled, true)),
		LogImages:       getEnvBool("LOG_IMAGE_REQUESTS", pickBool(fc.LogImages, false)),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", pickBool(fc.LogHealthChecks, true)),

		PhotosEndpoint:     strings.TrimSpace(getEnv("PHOTOS_ENDPOINT", fc.PhotosEndpoint)),
		VideosEndpoint:     strings.TrimSpace(getEnv("VIDEOS_ENDPOINT", fc.VideosEndpoint)),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", pickDuration(fc.FetchTimeout, 10*time.Second)),
		DirectoryRateLimit: getEnvFloat("DIRECTORY_RATE_LIMIT", fc.DirectoryRateLimit),

		CacheDir:    cacheDir,
		DatabaseDir: databaseDir,
		CacheTTL:    getEnvDuration("CACHE_TTL", pickDuration(fc.CacheTTL, 5*time.Minute)),

		BatchSize:      getEnvInt("BATCH_SIZE", orDefault(fc.BatchSize, 30)),
		LazyMargin:     getEnvInt("LAZY_MARGIN", orDefault(fc.LazyMargin, 200)),
		SwipeThreshold: getEnvInt("SWIPE_THRESHOLD", orDefault(fc.SwipeThreshold, 50)),
		SessionTTL:     getEnvDuration("SESSION_TTL", pickDuration(fc.SessionTTL, 30*time.Minute)),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", fc.AdminPasswordHash),

		DatabasePath: filepath.Join(databaseDir, "gallery.db"),
		ThumbnailDir: filepath.Join(cacheDir, "thumbnails"),
	}

	switch {
	case config.PhotosEndpoint == "":
		return nil, errors.New("PHOTOS_ENDPOINT is required")
	case config.BatchSize <= 0:
		return nil, fmt.Errorf("BATCH_SIZE must be positive, got %d", config.BatchSize)
	case config.DirectoryRateLimit < 0:
		return nil, fmt.Errorf("DIRECTORY_RATE_LIMIT must not be negative, got %v", config.DirectoryRateLimit)
	}
	return config, nil
}

// prepareDir creates dir if needed and checks that it accepts writes.
func prepareDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	return nil
}

// setupOptionalDir prepares a directory whose feature degrades instead of
// failing startup.
func setupOptionalDir(path, name string) bool {
	if err := prepareDir(path); err != nil {
		logging.Warn("  %s directory %s unusable, %s disabled: %v", name, path, name, err)
		return false
	}
	logging.Debug("  [OK] %s directory: %s", name, path)
	return true
}
