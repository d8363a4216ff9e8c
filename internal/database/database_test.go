package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wedding-gallery/internal/directory"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "gallery.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if filepath.Base(db.Path()) != "gallery.db" {
		t.Errorf("Path() = %q", db.Path())
	}
}

func TestNewInvalidPath(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "gallery.db"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestLoadListingMissing(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.LoadListing(context.Background(), "wedding_photos_cache")
	if !errors.Is(err, ErrListingNotFound) {
		t.Errorf("LoadListing() error = %v, want ErrListingNotFound", err)
	}
}

func TestSaveAndLoadListing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ts := time.UnixMilli(1_700_000_000_123)
	listing := Listing{
		Photos: []directory.Photo{
			{ID: 11, Alt: "first dance", DisplayOrder: 1, CDNFullURL: "https://cdn/11.jpg"},
			{ID: 7, Alt: "rings", DisplayOrder: 2},
		},
		Timestamp: ts,
	}

	if err := db.SaveListing(ctx, "k", listing); err != nil {
		t.Fatalf("SaveListing() error = %v", err)
	}

	got, err := db.LoadListing(ctx, "k")
	if err != nil {
		t.Fatalf("LoadListing() error = %v", err)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if len(got.Photos) != 2 || got.Photos[0].ID != 11 || got.Photos[0].CDNFullURL != "https://cdn/11.jpg" {
		t.Errorf("Photos = %+v", got.Photos)
	}
}

func TestSaveListingReplaces(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := Listing{Photos: []directory.Photo{{ID: 1}}, Timestamp: time.UnixMilli(1000)}
	second := Listing{Photos: []directory.Photo{{ID: 2}, {ID: 3}}, Timestamp: time.UnixMilli(2000)}

	if err := db.SaveListing(ctx, "k", first); err != nil {
		t.Fatalf("SaveListing(first) error = %v", err)
	}
	if err := db.SaveListing(ctx, "k", second); err != nil {
		t.Fatalf("SaveListing(second) error = %v", err)
	}

	got, err := db.LoadListing(ctx, "k")
	if err != nil {
		t.Fatalf("LoadListing() error = %v", err)
	}
	if len(got.Photos) != 2 || got.Timestamp.UnixMilli() != 2000 {
		t.Errorf("expected second listing, got %+v", got)
	}
}

