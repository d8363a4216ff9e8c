package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_second.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"sql/0001_first.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"sql/README.md":       {Data: []byte("ignored")},
	}

	got, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(got) != 2 || got[0].version != 1 || got[1].version != 2 {
		t.Errorf("loadMigrations() = %+v, want versions 1, 2", got)
	}
}

func TestLoadMigrationsErrors(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"no version": {"sql/first.sql": {Data: []byte("SELECT 1;")}},
		"duplicate": {
			"sql/0001_a.sql": {Data: []byte("SELECT 1;")},
			"sql/0001_b.sql": {Data: []byte("SELECT 1;")},
		},
		"no directory": {},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadMigrations(fsys); err == nil {
				t.Error("loadMigrations() expected error")
			}
		})
	}
}

func TestEmbeddedMigrationsApplied(t *testing.T) {
	db := setupTestDB(t)

	embedded, err := loadMigrations(migrationFiles)
	if err != nil {
		t.Fatal(err)
	}
	v, err := db.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if v != embedded[len(embedded)-1].version {
		t.Errorf("SchemaVersion() = %d, want %d", v, embedded[len(embedded)-1].version)
	}
}

func TestMigrateIsIncremental(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	extra := []migration{
		{version: 1, name: "0001_listing_cache.sql", sql: "THIS WOULD FAIL"},
		{version: 50, name: "0050_notes.sql", sql: "CREATE TABLE notes (body TEXT);"},
	}
	if err := db.migrate(ctx, extra); err != nil {
		t.Fatalf("migrate() error = %v", err)
	}
	if v, _ := db.SchemaVersion(ctx); v != 50 {
		t.Errorf("SchemaVersion() = %d, want 50", v)
	}

	// Applying again is a no-op.
	if err := db.migrate(ctx, extra); err != nil {
		t.Errorf("second migrate() error = %v", err)
	}
}

func TestMigrateRollsBackFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bad := []migration{{version: 60, name: "0060_bad.sql", sql: "CREATE TABLE t (id INTEGER); NOT SQL"}}
	if err := db.migrate(ctx, bad); err == nil {
		t.Fatal("migrate() expected error")
	}
	if v, _ := db.SchemaVersion(ctx); v >= 60 {
		t.Errorf("failed migration recorded: version %d", v)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.db")
	ctx := context.Background()

	first, err := New(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.SaveListing(ctx, "k", Listing{}); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := New(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()
	if _, err := second.LoadListing(ctx, "k"); err != nil {
		t.Errorf("LoadListing() after reopen error = %v", err)
	}
}
