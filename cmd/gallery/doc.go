// Package main provides the gallery command.
//
// Commands:
//
//	gallery serve [--config gallery.toml]   run the HTTP server (default)
//	gallery hash-password [--cost 12]       print a bcrypt hash for ADMIN_PASSWORD_HASH
//
// serve loads configuration (TOML file, then environment), opens the
// SQLite listing store, warms the photo cache from the Directory and
// starts the gallery API on PORT and Prometheus metrics on METRICS_PORT.
// SIGINT and SIGTERM trigger a graceful shutdown: HTTP server, metrics,
// sessions and finally the database.
package main
