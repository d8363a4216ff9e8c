package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// configEnv lists every variable Resolve reads, so tests start clean.
var configEnv = []string{
	"PORT", "METRICS_PORT", "METRICS_ENABLED", "LOG_IMAGE_REQUESTS", "LOG_HEALTH_CHECKS",
	"PHOTOS_ENDPOINT", "VIDEOS_ENDPOINT", "FETCH_TIMEOUT", "DIRECTORY_RATE_LIMIT",
	"CACHE_DIR", "DATABASE_DIR", "CACHE_TTL", "BATCH_SIZE", "LAZY_MARGIN",
	"SWIPE_THRESHOLD", "SESSION_TTL", "ADMIN_PASSWORD_HASH",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
}

// =============================================================================
// Resolve
// =============================================================================

func TestResolveDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PHOTOS_ENDPOINT", "https://directory.example/photos")

	config, err := Resolve(FileConfig{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if config.Port != "8080" || config.MetricsPort != "9090" || !config.MetricsEnabled {
		t.Errorf("ports/metrics = %s/%s/%v", config.Port, config.MetricsPort, config.MetricsEnabled)
	}
	if config.BatchSize != 30 || config.LazyMargin != 200 || config.SwipeThreshold != 50 {
		t.Errorf("batch/margin/threshold = %d/%d/%d", config.BatchSize, config.LazyMargin, config.SwipeThreshold)
	}
	if config.CacheTTL != 5*time.Minute || config.FetchTimeout != 10*time.Second || config.SessionTTL != 30*time.Minute {
		t.Errorf("durations = %v/%v/%v", config.CacheTTL, config.FetchTimeout, config.SessionTTL)
	}
	if config.DatabasePath != "/database/gallery.db" || config.ThumbnailDir != "/cache/thumbnails" {
		t.Errorf("derived paths = %s, %s", config.DatabasePath, config.ThumbnailDir)
	}
	if config.LogImages || !config.LogHealthChecks {
		t.Errorf("log flags = %v/%v", config.LogImages, config.LogHealthChecks)
	}
}

func TestResolveEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	metricsOff := false

	fc := FileConfig{
		Port:           "7000",
		PhotosEndpoint: "https://file.example/photos",
		BatchSize:      12,
		CacheTTL:       "1m",
		MetricsEnabled: &metricsOff,
	}
	t.Setenv("PORT", "7100")
	t.Setenv("CACHE_TTL", "90s")

	config, err := Resolve(fc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"port from env", config.Port, "7100"},
		{"endpoint from file", config.PhotosEndpoint, "https://file.example/photos"},
		{"batch size from file", config.BatchSize, 12},
		{"ttl from env", config.CacheTTL, 90 * time.Second},
		{"metrics from file", config.MetricsEnabled, false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestResolveInvalidValuesFallBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PHOTOS_ENDPOINT", "https://directory.example/photos")
	t.Setenv("LAZY_MARGIN", "wide")
	t.Setenv("FETCH_TIMEOUT", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	config, err := Resolve(FileConfig{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if config.LazyMargin != 200 || config.FetchTimeout != 10*time.Second || !config.MetricsEnabled {
		t.Errorf("fallbacks not applied: %+v", config)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing photos endpoint", map[string]string{}},
		{"zero batch size", map[string]string{"PHOTOS_ENDPOINT": "x", "BATCH_SIZE": "-1"}},
		{"negative rate limit", map[string]string{"PHOTOS_ENDPOINT": "x", "DIRECTORY_RATE_LIMIT": "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Resolve(FileConfig{}); err == nil {
				t.Error("Resolve() expected error")
			}
		})
	}
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.toml")
	content := `
photos_endpoint = "https://directory.example/photos"
videos_endpoint = "https://directory.example/videos"
batch_size = 24
cache_ttl = "2m"
log_image_requests = true
directory_rate_limit = 5.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := ReadConfigFile(path)
	if err != nil {
		t.Fatalf("ReadConfigFile() error = %v", err)
	}
	if fc.PhotosEndpoint != "https://directory.example/photos" || fc.BatchSize != 24 || fc.CacheTTL != "2m" {
		t.Errorf("ReadConfigFile() = %+v", fc)
	}
	if fc.LogImages == nil || !*fc.LogImages {
		t.Error("log_image_requests not decoded")
	}
	if fc.DirectoryRateLimit != 5.5 {
		t.Errorf("directory_rate_limit = %v", fc.DirectoryRateLimit)
	}
}

func TestReadConfigFileErrors(t *testing.T) {
	if _, err := ReadConfigFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("batch_size = = 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfigFile(path); err == nil {
		t.Error("expected error for malformed TOML")
	}

	if fc, err := ReadConfigFile(""); err != nil || fc.Port != "" {
		t.Errorf("ReadConfigFile(\"\") = %+v, %v", fc, err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_SET_VAR", "custom")
	t.Setenv("TEST_EMPTY_VAR", "")

	if got := getEnv("TEST_SET_VAR", "default"); got != "custom" {
		t.Errorf("getEnv(set) = %q", got)
	}
	if got := getEnv("TEST_EMPTY_VAR", "default"); got != "default" {
		t.Errorf("getEnv(empty) = %q", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"", true, true},
		{"true", false, true},
		{"0", true, false},
		{"yes", true, true},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.value)
		if got := getEnvBool("TEST_BOOL", tt.defaultValue); got != tt.want {
			t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/health":                         "health",
		"/api/photos":                     "api/photos",
		"/api/sessions/{sid}/viewer/open": "api/sessions",
		"/":                               "",
	}
	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/photos", nil).Methods("GET")
	router.HandleFunc("/api/sessions", nil).Methods("POST", "OPTIONS")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 3 {
		t.Errorf("GetRoutes() returned %d routes, want 3", len(routes))
	}
}

func TestSetupOptionalDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "thumbnails")
	if !setupOptionalDir(dir, "thumbnails") {
		t.Error("setupOptionalDir() = false for a writable temp dir")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if setupOptionalDir(filepath.Join(file, "sub"), "thumbnails") {
		t.Error("setupOptionalDir() = true below a regular file")
	}
}

func TestGetEnvParsers(t *testing.T) {
	t.Setenv("TEST_INT", "12")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_DURATION", "-3s")
	t.Setenv("TEST_BAD_INT", "twelve")

	if got := getEnvInt("TEST_INT", 1); got != 12 {
		t.Errorf("getEnvInt = %d, want 12", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvInt(bad) = %d, want default", got)
	}
	if got := getEnvFloat("TEST_FLOAT", 0); got != 2.5 {
		t.Errorf("getEnvFloat = %v, want 2.5", got)
	}
	if got := getEnvDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration(negative) = %v, want default", got)
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("", "x"); got != "x" {
		t.Errorf("orDefault(\"\") = %q", got)
	}
	if got := orDefault(7, 30); got != 7 {
		t.Errorf("orDefault(7) = %d", got)
	}
	if got := pickDuration("0s", time.Minute); got != time.Minute {
		t.Errorf("pickDuration(0s) = %v, want default", got)
	}
}
