package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/photocache"
	"wedding-gallery/internal/session"
	"wedding-gallery/internal/viewer"

	"github.com/gorilla/mux"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

var errBadRequest = errors.New("bad request")

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONResponse writes v with the given status code.
func writeJSONResponse(w http.ResponseWriter, v interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeError maps err onto a status code and writes it.
func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Error("Request failed: %v", err)
	} else {
		logging.Debug("Request rejected (%d): %v", status, err)
	}
	writeJSONError(w, err.Error(), status)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrNotFound),
		errors.Is(err, photocache.ErrNoURL),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrTileNotFound),
		errors.Is(err, viewer.ErrNotInWorkingSet):
		return http.StatusNotFound
	case errors.Is(err, viewer.ErrNotOpen),
		errors.Is(err, viewer.ErrNotResolved):
		return http.StatusConflict
	case errors.Is(err, directory.ErrNetwork),
		errors.Is(err, directory.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// photoID parses the {id} route variable.
func photoID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid photo id %q", errBadRequest, raw)
	}
	return id, nil
}

func wantsWait(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}
