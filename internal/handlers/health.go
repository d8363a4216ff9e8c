package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Gallery state
	ListingPhotos     int    `json:"listingPhotos"`
	ActiveSessions    int    `json:"activeSessions"`
	ThumbnailsEnabled bool   `json:"thumbnailsEnabled"`
	DatabaseError     string `json:"databaseError,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. A failing listing
// store degrades the service but does not take it down: the in-memory
// cache keeps serving.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats := h.sessions.GetStats()

	response := HealthResponse{
		Status:            statusHealthy,
		Ready:             true,
		Version:           startup.Version,
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
		ListingPhotos:     stats.ListingPhotos,
		ActiveSessions:    stats.ActiveSessions,
		ThumbnailsEnabled: h.thumbGen.IsEnabled(),
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		NumGoroutine:      runtime.NumGoroutine(),
	}

	if err := h.pingDatabase(r.Context()); err != nil {
		response.Status = statusDegraded
		response.DatabaseError = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 503 while the listing store is unreachable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pingDatabase(r.Context()); err != nil {
		logging.Warn("Readiness check failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "not_ready"})
		return
	}
	writeJSONStatus(w, "ready")
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, startup.GetBuildInfo(), http.StatusOK)
}

func (h *Handlers) pingDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx)
}
