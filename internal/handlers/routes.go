package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every gallery route on a fresh router.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/photos", h.ListPhotos).Methods("GET")
	api.HandleFunc("/photos/{id:[0-9]+}", h.GetPhoto).Methods("GET")
	api.HandleFunc("/photos/{id:[0-9]+}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/videos", h.ListVideos).Methods("GET")

	// Sessions
	api.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	sess := api.PathPrefix("/sessions/{sid}").Subrouter()
	sess.HandleFunc("", h.DeleteSession).Methods("DELETE")
	sess.HandleFunc("/grid", h.GetGrid).Methods("GET")
	sess.HandleFunc("/grid/sentinel", h.NotifySentinel).Methods("POST")
	sess.HandleFunc("/grid/refresh", h.RefreshGrid).Methods("POST")
	sess.HandleFunc("/tiles/{id:[0-9]+}", h.GetTile).Methods("GET")
	sess.HandleFunc("/tiles/{id:[0-9]+}/visibility", h.NotifyTile).Methods("POST")
	sess.HandleFunc("/viewer", h.GetViewer).Methods("GET")
	sess.HandleFunc("/viewer/open", h.OpenViewer).Methods("POST")
	sess.HandleFunc("/viewer/next", h.NextPhoto).Methods("POST")
	sess.HandleFunc("/viewer/prev", h.PrevPhoto).Methods("POST")
	sess.HandleFunc("/viewer/close", h.CloseViewer).Methods("POST")
	sess.HandleFunc("/viewer/key", h.ViewerKey).Methods("POST")
	sess.HandleFunc("/viewer/swipe", h.ViewerSwipe).Methods("POST")
	sess.HandleFunc("/viewer/notice/dismiss", h.DismissNotice).Methods("POST")
	sess.HandleFunc("/viewer/download", h.DownloadPhoto).Methods("GET")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.AdminMiddleware)
	admin.HandleFunc("/photos", h.CreatePhoto).Methods("POST")
	admin.HandleFunc("/photos/order", h.ReorderPhotos).Methods("PUT")
	admin.HandleFunc("/photos/{id:[0-9]+}", h.DeletePhoto).Methods("DELETE")
	admin.HandleFunc("/videos/{id:[0-9]+}", h.UpdateVideo).Methods("PUT")
	admin.HandleFunc("/cache/invalidate", h.InvalidateCache).Methods("POST")
	admin.HandleFunc("/cache/warm", h.WarmCache).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, "Not found", http.StatusNotFound)
	})

	return r
}
