package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"wedding-gallery/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MetricsConfig holds configuration for the metrics middleware.
type MetricsConfig struct {
	// SkipPaths are path prefixes that are not recorded.
	SkipPaths []string
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// Metrics records request counts and latencies labelled by route template.
// Register it with router.Use so the matched route is known.
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			rw := newResponseWriter(w)
			start := time.Now()
			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel prefers the matched mux route template so ids never become
// label values.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return stripPatterns(tmpl)
		}
	}
	return normalizePath(r.URL.Path)
}

// stripPatterns turns "/photos/{id:[0-9]+}" into "/photos/{id}".
func stripPatterns(tmpl string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		name, _, _ := strings.Cut(tmpl[open+1:open+end], ":")
		b.WriteString(tmpl[:open])
		b.WriteString("{" + name + "}")
		tmpl = tmpl[open+end+1:]
	}
}

// normalizePath replaces photo ids and session UUIDs for unmatched routes.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if _, err := strconv.ParseUint(part, 10, 64); err == nil {
			parts[i] = "{id}"
		} else if len(part) == 36 && uuid.Validate(part) == nil {
			parts[i] = "{sid}"
		}
	}
	return strings.Join(parts, "/")
}
