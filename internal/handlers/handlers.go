package handlers

import (
	"time"

	"wedding-gallery/internal/database"
	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/photocache"
	"wedding-gallery/internal/session"
	"wedding-gallery/internal/startup"
	"wedding-gallery/internal/thumbnail"
)

type Handlers struct {
	directory *directory.Client
	cache     *photocache.Cache
	sessions  *session.Manager
	thumbGen  *thumbnail.Generator
	db        *database.Database
	adminHash []byte
	startTime time.Time
}

// New wires the HTTP handlers. db may be nil when the listing is not
// persisted.
func New(client *directory.Client, cache *photocache.Cache, sessions *session.Manager, thumbGen *thumbnail.Generator, db *database.Database, config *startup.Config) *Handlers {
	return &Handlers{
		directory: client,
		cache:     cache,
		sessions:  sessions,
		thumbGen:  thumbGen,
		db:        db,
		adminHash: []byte(config.AdminPasswordHash),
		startTime: time.Now(),
	}
}
