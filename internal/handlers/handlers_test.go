package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/photocache"
	"wedding-gallery/internal/session"
	"wedding-gallery/internal/startup"
	"wedding-gallery/internal/thumbnail"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "s3cret-vows"

// =============================================================================
// Fake Directory
// =============================================================================

// fakeDirectory is an in-memory photo/video Directory. The listing omits
// image URLs like the public endpoint does; single lookups and /img/{id}
// serve them.
type fakeDirectory struct {
	mu         sync.Mutex
	server     *httptest.Server
	photos     []directory.Photo
	videos     []directory.Video
	nextID     int64
	failList   bool
	failSingle bool
	failVideos bool
	failImages bool
	listCalls  int
}

func newFakeDirectory(t *testing.T, n int) *fakeDirectory {
	t.Helper()

	f := &fakeDirectory{nextID: int64(n) + 1}
	for i := 1; i <= n; i++ {
		f.photos = append(f.photos, directory.Photo{
			ID:           int64(i),
			Alt:          fmt.Sprintf("Photo %d", i),
			DisplayOrder: i,
		})
	}
	f.videos = []directory.Video{
		{ID: 1, Title: "Ceremony", DisplayOrder: 1},
		{ID: 2, Title: "Banquet", DisplayOrder: 2},
	}

	r := mux.NewRouter()
	r.HandleFunc("/photos", f.servePhotos)
	r.HandleFunc("/videos", f.serveVideos)
	r.HandleFunc("/img/{id}", f.serveImage)
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDirectory) imageURL(id int64) string {
	return f.server.URL + "/img/" + strconv.FormatInt(id, 10)
}

func (f *fakeDirectory) listings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeDirectory) set(fn func(f *fakeDirectory)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeDirectory) servePhotos(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if raw := r.URL.Query().Get("id"); raw != "" {
			if f.failSingle {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			id, _ := strconv.ParseInt(raw, 10, 64)
			for _, p := range f.photos {
				if p.ID == id {
					p.URL = f.imageURL(id)
					_ = json.NewEncoder(w).Encode(p)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.listCalls++
		if f.failList {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"photos": f.photos})

	case http.MethodPost:
		var p directory.NewPhoto
		_ = json.NewDecoder(r.Body).Decode(&p)
		id := f.nextID
		f.nextID++
		f.photos = append(f.photos, directory.Photo{ID: id, Alt: p.Alt, DisplayOrder: int(id)})
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "id": id})

	case http.MethodPut:
		var req struct {
			Orders []directory.Order `json:"orders"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, o := range req.Orders {
			for i := range f.photos {
				if f.photos[i].ID == o.ID {
					f.photos[i].DisplayOrder = o.DisplayOrder
				}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})

	case http.MethodDelete:
		id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		idx := slices.IndexFunc(f.photos, func(p directory.Photo) bool { return p.ID == id })
		if idx < 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.photos = slices.Delete(f.photos, idx, idx+1)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func (f *fakeDirectory) serveVideos(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failVideos {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"videos": f.videos})
	case http.MethodPut:
		var req struct {
			ID  int64   `json:"id"`
			URL *string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for i := range f.videos {
			if f.videos[i].ID == req.ID {
				f.videos[i].URL = req.URL
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func (f *fakeDirectory) serveImage(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	fail := f.failImages
	f.mu.Unlock()
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for x := 0; x < 800; x++ {
		img.Set(x, 300, color.RGBA{R: 200, A: 255})
	}
	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, img)
}

// =============================================================================
// Test environment
// =============================================================================

type testEnv struct {
	dir      *fakeDirectory
	cache    *photocache.Cache
	sessions *session.Manager
	router   *mux.Router
}

type envOptions struct {
	photos     int
	adminHash  string
	thumbnails bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	dir := newFakeDirectory(t, opts.photos)
	client := directory.New(directory.Config{
		PhotosEndpoint: dir.server.URL + "/photos",
		VideosEndpoint: dir.server.URL + "/videos",
	})
	cache := photocache.New(client)
	sessions := session.NewManager(cache, client, session.Config{BatchSize: 2})
	t.Cleanup(sessions.Close)
	thumbs := thumbnail.NewGenerator(cache, client, t.TempDir(), opts.thumbnails)

	h := New(client, cache, sessions, thumbs, nil, &startup.Config{AdminPasswordHash: opts.adminHash})
	return &testEnv{
		dir:      dir,
		cache:    cache,
		sessions: sessions,
		router:   NewRouter(h),
	}
}

func testAdminHash(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// =============================================================================
// Health and version
// =============================================================================

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, envOptions{photos: 3, thumbnails: true})

	rec := env.do(t, "GET", "/health", "")
	expectStatus(t, rec, http.StatusOK)
	health := decodeBody[HealthResponse](t, rec)
	if health.Status != statusHealthy || !health.Ready || !health.ThumbnailsEnabled {
		t.Errorf("health = %+v", health)
	}

	rec = env.do(t, "HEAD", "/livez", "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD /livez returned a body: %q", rec.Body.String())
	}

	rec = env.do(t, "GET", "/readyz", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[map[string]string](t, rec)["status"]; got != "ready" {
		t.Errorf("readyz status = %q", got)
	}

	rec = env.do(t, "GET", "/version", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[startup.BuildInfo](t, rec); got.Version != startup.Version {
		t.Errorf("version = %q, want %q", got.Version, startup.Version)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	env := newTestEnv(t, envOptions{photos: 1})

	rec := env.do(t, "GET", "/api/nothing-here", "")
	expectStatus(t, rec, http.StatusNotFound)
	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", errBadRequest), http.StatusBadRequest},
		{fmt.Errorf("photo 9: %w", directory.ErrNotFound), http.StatusNotFound},
		{photocache.ErrNoURL, http.StatusNotFound},
		{session.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 503", directory.ErrNetwork), http.StatusBadGateway},
		{directory.ErrDecode, http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ ID int64 }

	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	if err := decodeJSON(req, &v); err != nil {
		t.Errorf("empty body error = %v", err)
	}

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString("{not json"))
	if err := decodeJSON(req, &v); statusForError(err) != http.StatusBadRequest {
		t.Errorf("malformed body error = %v", err)
	}
}
