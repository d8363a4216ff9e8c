package handlers

import (
	"net/http"

	"wedding-gallery/internal/lazyload"
	"wedding-gallery/internal/session"

	"github.com/gorilla/mux"
)

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	Session session.Info     `json:"session"`
	Grid    session.GridView `json:"grid"`
}

// SentinelResponse reports whether a sentinel entry revealed a batch.
type SentinelResponse struct {
	Loaded bool             `json:"loaded"`
	Grid   session.GridView `json:"grid"`
}

// RefreshResponse reports whether a refresh reset pagination.
type RefreshResponse struct {
	Reset bool             `json:"reset"`
	Grid  session.GridView `json:"grid"`
}

// VisibilityResponse reports whether a visibility entry started a load.
type VisibilityResponse struct {
	Started bool              `json:"started"`
	Tile    lazyload.TileView `json:"tile"`
}

// session looks up the {sid} route variable, writing a 404 when absent.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

// CreateSession starts a gallery session with its first batch displayed.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(r.Context())
	writeJSONResponse(w, SessionResponse{
		Session: h.sessions.Info(s),
		Grid:    s.GridView(),
	}, http.StatusCreated)
}

// DeleteSession ends a session.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(mux.Vars(r)["sid"]) {
		writeJSONError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGrid returns the grid and its tiles.
func (h *Handlers) GetGrid(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, s.GridView(), http.StatusOK)
}

// NotifySentinel delivers a visibility entry for the grid's end-of-list
// marker. An empty body means the sentinel is in view.
func (h *Handlers) NotifySentinel(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	entry := lazyload.Entry{Intersecting: true}
	if err := decodeJSON(r, &entry); err != nil {
		writeError(w, err)
		return
	}

	loaded := s.NotifySentinel(entry)
	writeJSONResponse(w, SentinelResponse{Loaded: loaded, Grid: s.GridView()}, http.StatusOK)
}

// RefreshGrid re-reads the listing and reconciles the grid with it.
func (h *Handlers) RefreshGrid(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	reset := h.sessions.Refresh(r.Context(), s)
	writeJSONResponse(w, RefreshResponse{Reset: reset, Grid: s.GridView()}, http.StatusOK)
}

// GetTile returns one tile. With ?wait=true it blocks until a pending
// load settles or the request is cancelled.
func (h *Handlers) GetTile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, err := photoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tile, err := s.Tile(id)
	if err != nil {
		writeError(w, err)
		return
	}

	if wantsWait(r) {
		if err := tile.Wait(r.Context()); err != nil {
			return
		}
	}
	writeJSONResponse(w, tile.Snapshot(), http.StatusOK)
}

// NotifyTile delivers a visibility entry to one tile. An empty body means
// the tile is in view.
func (h *Handlers) NotifyTile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, err := photoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry := lazyload.Entry{Intersecting: true}
	if err := decodeJSON(r, &entry); err != nil {
		writeError(w, err)
		return
	}

	started, err := s.NotifyTile(id, entry)
	if err != nil {
		writeError(w, err)
		return
	}
	tile, err := s.Tile(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, VisibilityResponse{Started: started, Tile: tile.Snapshot()}, http.StatusOK)
}
