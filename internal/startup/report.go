package startup

import (
	"fmt"
	"maps"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"wedding-gallery/internal/logging"

	"github.com/gorilla/mux"
)

const rule = "------------------------------------------------------------"

func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

func printBanner() {
	fmt.Println(rule + `
 __      __          _    _ _                ___      _ _
 \ \    / /__ __| |__| |__| (_)_ _  __ _     / __|__ _| | |___ _ _ _  _
  \ \/\/ / -_) _' / _' / _' | | ' \/ _' |   | (_ / _' | | / -_) '_| || |
   \_/\_/\___\__,_\__,_\__,_|_|_||_\__, |    \___\__,_|_|_\___|_|  \_, |
                                   |___/                           |__/
` + rule)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))
	if host, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:        %s", host)
	}
}

func logConfig(c *Config) {
	rows := [][2]string{
		{"PORT", c.Port},
		{"METRICS_PORT", c.MetricsPort},
		{"METRICS_ENABLED", fmt.Sprint(c.MetricsEnabled)},
		{"PHOTOS_ENDPOINT", c.PhotosEndpoint},
		{"VIDEOS_ENDPOINT", orNone(c.VideosEndpoint)},
		{"CACHE_DIR", c.CacheDir},
		{"DATABASE_DIR", c.DatabaseDir},
		{"BATCH_SIZE", fmt.Sprint(c.BatchSize)},
		{"CACHE_TTL", c.CacheTTL.String()},
		{"LAZY_MARGIN", fmt.Sprintf("%dpx", c.LazyMargin)},
		{"SWIPE_THRESHOLD", fmt.Sprintf("%dpx", c.SwipeThreshold)},
		{"FETCH_TIMEOUT", c.FetchTimeout.String()},
		{"DIRECTORY_RATE_LIMIT", rateString(c.DirectoryRateLimit)},
		{"SESSION_TTL", c.SessionTTL.String()},
		{"ADMIN_PASSWORD_HASH", setString(c.AdminPasswordHash != "")},
		{"LOG_IMAGE_REQUESTS", fmt.Sprint(c.LogImages)},
		{"LOG_HEALTH_CHECKS", fmt.Sprint(c.LogHealthChecks)},
		{"LOG_LEVEL", logging.GetLevel().String()},
	}
	for _, r := range rows {
		logging.Info("  %-21s %s", r[0]+":", r[1])
	}
}

func logFeatures(c *Config) {
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Listing store: ENABLED (required)")
	logging.Info("    Videos:        %s", enabledString(c.VideosEndpoint != ""))
	logging.Info("    Thumbnails:    %s", enabledString(c.ThumbnailsEnabled))
	logging.Info("    Admin:         %s", enabledString(c.AdminPasswordHash != ""))
	logging.Info("    Metrics:       %s", enabledString(c.MetricsEnabled))
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func setString(set bool) string {
	if set {
		return "(set)"
	}
	return "(not set)"
}

func rateString(rps float64) string {
	if rps <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%g req/s", rps)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func LogDatabaseInit(duration time.Duration) {
	section("DATABASE INITIALIZATION")
	logging.Info("  [OK] Listing store initialized in %v", duration)
}

// LogCacheInit reports the warm-start listing fetch.
func LogCacheInit(photos int, duration time.Duration) {
	section("PHOTO CACHE INITIALIZATION")
	if photos == 0 {
		logging.Warn("  Listing is empty (directory unreachable and nothing cached?)")
		return
	}
	logging.Info("  [OK] %d photos listed in %v", photos, duration)
}

func LogThumbnailInit(enabled bool) {
	if !enabled {
		logging.Info("  Thumbnails disabled; tiles fall back to the full image")
	}
}

// RouteInfo describes one method/path pair registered on a router.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes lists every method/path pair registered on router.
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: path, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes logs the routing table at debug level, grouped by the
// first path segment under /api.
func LogHTTPRoutes(router *mux.Router, logImages, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}
		groups := make(map[string][]RouteInfo)
		for _, r := range routes {
			g := getRouteGroup(r.Path)
			groups[g] = append(groups[g], r)
		}
		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, g := range slices.Sorted(maps.Keys(groups)) {
			logging.Debug("  [%s]", orDefault(g, "root"))
			for _, r := range groups[g] {
				logging.Debug("    %-6s %s", r.Method, r.Path)
			}
		}
	}

	logging.Info("  Image request logging: %s", onOff(logImages, "LOG_IMAGE_REQUESTS"))
	logging.Info("  Health check logging:  %s", onOff(logHealthChecks, "LOG_HEALTH_CHECKS"))
}

func onOff(on bool, env string) string {
	if on {
		return "ON"
	}
	return "OFF (set " + env + "=true to enable)"
}

// getRouteGroup maps "/api/sessions/{sid}/grid" to "api/sessions" and
// "/healthz" to "healthz".
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		sub, _, _ := strings.Cut(rest, "/")
		return "api/" + sub
	}
	return first
}

// ServerConfig feeds LogServerStarted.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  Gallery:         http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info(rule)
}

func LogShutdownInitiated(signal string) {
	section("SHUTDOWN INITIATED (received " + signal + ")")
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}
