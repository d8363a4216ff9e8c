package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wedding-gallery/internal/logging"
)

const defaultTimeout = 5 * time.Second

// Database is the SQLite store behind the photo cache. It keeps the last
// good Directory listing so a restart can serve photos while the
// Directory is down.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens the database at dbPath, creating the file if needed, and
// brings its schema up to date. The parent directory must exist.
func New(ctx context.Context, dbPath string) (*Database, error) {
	migrations, err := loadMigrations(migrationFiles)
	if err != nil {
		return nil, err
	}

	// WAL keeps readiness pings from blocking behind listing writes.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, dbPath: dbPath}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		d.closeAfter("ping", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := d.migrate(ctx, migrations); err != nil {
		d.closeAfter("migration", err)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Info("Database ready at %s", dbPath)
	return d, nil
}

func (d *Database) closeAfter(stage string, cause error) {
	if err := d.db.Close(); err != nil {
		logging.Error("failed to close database after %s failure (%v): %v", stage, cause, err)
	}
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

func (d *Database) Path() string {
	return d.dbPath
}

func (d *Database) Close() error {
	return d.db.Close()
}
