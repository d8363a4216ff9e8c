package handlers

import (
	"errors"
	"net/http"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/thumbnail"
)

// PhotoResponse is a photo with its resolved full-size URL.
type PhotoResponse struct {
	directory.Photo
	ResolvedURL string `json:"resolved_url"`
}

// ListPhotos returns the cached listing. It never fails: when the
// Directory is down the last known listing, or an empty one, is served.
func (h *Handlers) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos := h.cache.GetAll(r.Context())
	writeJSONResponse(w, map[string]interface{}{"photos": photos}, http.StatusOK)
}

// GetPhoto returns one photo and resolves its full-size URL.
func (h *Handlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	photo, err := h.cache.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := h.cache.ResolveURL(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, PhotoResponse{Photo: photo, ResolvedURL: url}, http.StatusOK)
}

// GetThumbnail serves a generated 400px JPEG thumbnail.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if !h.thumbGen.IsEnabled() {
		writeJSONError(w, "Thumbnails disabled", http.StatusServiceUnavailable)
		return
	}

	thumb, err := h.thumbGen.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, thumbnail.ErrDisabled) {
			writeJSONError(w, "Thumbnails disabled", http.StatusServiceUnavailable)
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(thumb); err != nil {
		logging.Debug("Thumbnail write for photo %d aborted: %v", id, err)
	}
}
