// Package middleware provides HTTP middleware for the gallery server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Response compression (gzip)
//   - Prometheus request metrics labelled by route template
package middleware
