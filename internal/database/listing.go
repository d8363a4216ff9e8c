package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/metrics"
)

// ErrListingNotFound is returned by LoadListing when no entry exists for the key.
var ErrListingNotFound = errors.New("listing not cached")

// Listing is a persisted copy of the Directory's photo listing.
type Listing struct {
	Photos    []directory.Photo `json:"photos"`
	Timestamp time.Time         `json:"-"`
}

// LoadListing returns the listing stored under key.
func (d *Database) LoadListing(ctx context.Context, key string) (*Listing, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var payload string
	var timestampMs int64
	err := d.db.QueryRowContext(ctx,
		`SELECT payload, timestamp_ms FROM listing_cache WHERE key = ?`, key,
	).Scan(&payload, &timestampMs)

	if errors.Is(err, sql.ErrNoRows) {
		recordQuery("load_listing", start, nil)
		return nil, ErrListingNotFound
	}
	if err != nil {
		recordQuery("load_listing", start, err)
		return nil, fmt.Errorf("failed to load listing %q: %w", key, err)
	}

	var listing Listing
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		recordQuery("load_listing", start, err)
		return nil, fmt.Errorf("failed to decode listing %q: %w", key, err)
	}
	listing.Timestamp = time.UnixMilli(timestampMs)

	recordQuery("load_listing", start, nil)
	return &listing, nil
}

// SaveListing stores listing under key, replacing any previous entry.
func (d *Database) SaveListing(ctx context.Context, key string, listing Listing) error {
	start := time.Now()

	payload, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to encode listing %q: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO listing_cache (key, payload, timestamp_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, timestamp_ms = excluded.timestamp_ms
	`, key, string(payload), listing.Timestamp.UnixMilli())

	recordQuery("save_listing", start, err)
	if err != nil {
		return fmt.Errorf("failed to save listing %q: %w", key, err)
	}
	return nil
}

func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
