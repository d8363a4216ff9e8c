package handlers

import (
	"net/http"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
)

// placeholderVideos is shown when the video Directory is unavailable so
// the page keeps its layout; none of them is playable.
var placeholderVideos = []directory.Video{
	{ID: 1, Title: "Ceremony", DisplayOrder: 1},
	{ID: 2, Title: "Banquet", DisplayOrder: 2},
	{ID: 3, Title: "Walk", DisplayOrder: 3},
}

// VideosResponse is the video listing.
type VideosResponse struct {
	Videos      []directory.Video `json:"videos"`
	Placeholder bool              `json:"placeholder"`
}

// ListVideos returns the video list, falling back to placeholders.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.directory.ListVideos(r.Context())
	if err != nil {
		logging.Warn("Failed to fetch videos, serving placeholders: %v", err)
		writeJSONResponse(w, VideosResponse{Videos: placeholderVideos, Placeholder: true}, http.StatusOK)
		return
	}
	writeJSONResponse(w, VideosResponse{Videos: videos}, http.StatusOK)
}
