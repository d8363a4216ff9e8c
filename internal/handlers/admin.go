package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/metrics"

	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordHeader carries the admin secret on every admin request.
const AdminPasswordHeader = "X-Admin-Password"

type reorderRequest struct {
	Orders []directory.Order `json:"orders"`
}

type videoRequest struct {
	URL *string `json:"url"`
}

// AdminMiddleware rejects requests whose X-Admin-Password does not match
// the configured bcrypt hash. With no hash configured every request is
// rejected.
func (h *Handlers) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.adminHash) == 0 {
			logging.Warn("Admin request to %s rejected: ADMIN_PASSWORD_HASH is not set", r.URL.Path)
			metrics.AdminAuthFailures.Inc()
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		password := r.Header.Get(AdminPasswordHeader)
		if password == "" || bcrypt.CompareHashAndPassword(h.adminHash, []byte(password)) != nil {
			logging.Warn("Admin request to %s rejected: bad password", r.URL.Path)
			metrics.AdminAuthFailures.Inc()
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CreatePhoto adds a photo to the Directory.
func (h *Handlers) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	var req directory.NewPhoto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, fmt.Errorf("%w: url is required", errBadRequest))
		return
	}

	id, err := h.directory.CreatePhoto(r.Context(), req)
	recordAdmin("create_photo", err)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cache.Invalidate(r.Context())

	logging.Info("Admin: created photo %d", id)
	writeJSONResponse(w, map[string]int64{"id": id}, http.StatusCreated)
}

// DeletePhoto removes a photo and everything cached about it.
func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.directory.DeletePhoto(r.Context(), id)
	recordAdmin("delete_photo", err)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cache.Forget(id)
	h.thumbGen.Remove(id)
	h.cache.Invalidate(r.Context())

	logging.Info("Admin: deleted photo %d", id)
	writeJSONStatus(w, "deleted")
}

// ReorderPhotos assigns display positions in bulk.
func (h *Handlers) ReorderPhotos(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, fmt.Errorf("%w: orders must not be empty", errBadRequest))
		return
	}

	err := h.directory.ReorderPhotos(r.Context(), req.Orders)
	recordAdmin("reorder_photos", err)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cache.Invalidate(r.Context())

	logging.Info("Admin: reordered %d photos", len(req.Orders))
	writeJSONStatus(w, "reordered")
}

// UpdateVideo sets a video's URL; {"url": null} clears it.
func (h *Handlers) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err = h.directory.UpdateVideo(r.Context(), id, req.URL)
	recordAdmin("update_video", err)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cache.Invalidate(r.Context())

	logging.Info("Admin: updated video %d", id)
	writeJSONStatus(w, "updated")
}

// InvalidateCache expires the cached listing.
func (h *Handlers) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate(r.Context())
	recordAdmin("invalidate_cache", nil)
	logging.Info("Admin: listing cache invalidated")
	writeJSONStatus(w, "invalidated")
}

// WarmCache resolves the full-size URL of every listed photo.
func (h *Handlers) WarmCache(w http.ResponseWriter, r *http.Request) {
	photos := h.cache.GetAll(r.Context())
	ids := make([]int64, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
	}

	result, err := h.cache.Warm(r.Context(), ids)
	recordAdmin("warm_cache", err)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Info("Admin: cache warmed (%d resolved, %d failed)", result.Resolved, result.Failed)
	writeJSONResponse(w, result, http.StatusOK)
}

func recordAdmin(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.AdminOperationsTotal.WithLabelValues(operation, status).Inc()
}
