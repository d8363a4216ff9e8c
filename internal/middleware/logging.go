package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wedding-gallery/internal/logging"
)

// responseWriter records what the handler sent so the access log can
// report it.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingConfig controls which requests reach the access log.
type LoggingConfig struct {
	// SkipPaths are path prefixes that are never logged.
	SkipPaths []string

	// LogImages keeps successful image responses (thumbnails, downloads)
	// in the log. A gallery page fans out into dozens of them.
	LogImages bool

	LogHealthChecks bool
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{LogHealthChecks: true}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// Logger writes one W3C extended log line per request:
//
//	date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken x-session sc(Content-Encoding) cs(User-Agent) cs(Referer)
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipRequest(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if !config.LogImages && rw.statusCode < 400 &&
				strings.HasPrefix(rw.Header().Get("Content-Type"), "image/") {
				return
			}

			//nolint:gosec // G706: every request-derived field passes through sanitizeLogField.
			logging.Println(accessLine(time.Now().UTC(), r, rw, time.Since(start)))
		})
	}
}

func accessLine(now time.Time, r *http.Request, rw *responseWriter, took time.Duration) string {
	fields := []string{
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		orDash(sanitizeLogField(getClientIP(r))),
		sanitizeLogField(r.Method),
		sanitizeLogField(r.URL.Path),
		orDash(sanitizeLogField(r.URL.RawQuery)),
		strconv.Itoa(rw.statusCode),
		strconv.FormatInt(rw.bytesWritten, 10),
		strconv.FormatInt(took.Milliseconds(), 10),
		orDash(sanitizeLogField(sessionID(r.URL.Path))),
		orDash(rw.Header().Get("Content-Encoding")),
		orDash(quoteW3C(sanitizeLogField(r.Header.Get("User-Agent")))),
		orDash(quoteW3C(sanitizeLogField(r.Header.Get("Referer")))),
	}
	return strings.Join(fields, " ")
}

func skipRequest(path string, config LoggingConfig) bool {
	for _, prefix := range config.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return !config.LogHealthChecks && healthCheckPaths[path]
}

// sessionID pulls the viewer session out of /api/sessions/{sid}/... paths.
func sessionID(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/sessions/")
	if !ok {
		return ""
	}
	sid, _, _ := strings.Cut(rest, "/")
	return sid
}

// sanitizeLogField strips control characters so request data cannot forge
// log lines or smuggle terminal escapes. Newlines become spaces; tabs stay.
func sanitizeLogField(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20:
			return -1
		}
		return r
	}, s)
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection's remote address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func quoteW3C(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
