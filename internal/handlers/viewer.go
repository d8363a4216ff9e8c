package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"wedding-gallery/internal/viewer"
)

type openRequest struct {
	ID int64 `json:"id"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type swipeRequest struct {
	DX int `json:"dx"`
}

// ViewerActionResponse reports whether an input was acted upon.
type ViewerActionResponse struct {
	Handled bool        `json:"handled"`
	Viewer  viewer.View `json:"viewer"`
}

// GetViewer returns the lightbox state. With ?wait=true it blocks until
// the current image is resolved or the request is cancelled.
func (h *Handlers) GetViewer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if wantsWait(r) {
		if err := s.Viewer.Wait(r.Context()); err != nil {
			return
		}
	}
	writeJSONResponse(w, s.Viewer.View(), http.StatusOK)
}

// OpenViewer opens the lightbox at {"id": n} over the session's full list.
func (h *Handlers) OpenViewer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID <= 0 {
		writeError(w, fmt.Errorf("%w: id is required", errBadRequest))
		return
	}

	if err := s.OpenViewer(req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, s.Viewer.View(), http.StatusOK)
}

// NextPhoto, PrevPhoto and CloseViewer are no-ops on a closed viewer.
func (h *Handlers) NextPhoto(w http.ResponseWriter, r *http.Request) {
	h.viewerAction(w, r, (*viewer.Viewer).Next)
}

func (h *Handlers) PrevPhoto(w http.ResponseWriter, r *http.Request) {
	h.viewerAction(w, r, (*viewer.Viewer).Prev)
}

func (h *Handlers) CloseViewer(w http.ResponseWriter, r *http.Request) {
	h.viewerAction(w, r, (*viewer.Viewer).Close)
}

func (h *Handlers) DismissNotice(w http.ResponseWriter, r *http.Request) {
	h.viewerAction(w, r, (*viewer.Viewer).DismissNotice)
}

func (h *Handlers) viewerAction(w http.ResponseWriter, r *http.Request, action func(*viewer.Viewer)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	action(s.Viewer)
	writeJSONResponse(w, s.Viewer.View(), http.StatusOK)
}

// ViewerKey applies a keyboard binding: Escape, ArrowLeft or ArrowRight.
func (h *Handlers) ViewerKey(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req keyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	handled := s.Viewer.HandleKey(req.Key)
	writeJSONResponse(w, ViewerActionResponse{Handled: handled, Viewer: s.Viewer.View()}, http.StatusOK)
}

// ViewerSwipe applies a completed horizontal swipe of {"dx": end-start}.
func (h *Handlers) ViewerSwipe(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req swipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	handled := s.Viewer.Swipe(req.DX)
	writeJSONResponse(w, ViewerActionResponse{Handled: handled, Viewer: s.Viewer.View()}, http.StatusOK)
}

// DownloadPhoto streams the displayed image as an attachment named after
// its alt text. A failed fetch leaves a notice on the viewer.
func (h *Handlers) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	dl, err := s.Viewer.DownloadCurrent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(dl.Data)
}
