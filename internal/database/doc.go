// Package database provides SQLite persistence for the wedding gallery.
//
// The only durable state is the cached Directory listing: one row per
// cache key holding the JSON-encoded photos and the epoch-millisecond
// timestamp of the fetch. It lets a restarted server answer from a stale
// listing while the Directory is unreachable.
//
// The database runs in WAL mode. Schema changes live in sql/NNNN_name.sql
// files embedded in the binary and applied in order on open; applied
// versions are recorded in schema_migrations.
package database
