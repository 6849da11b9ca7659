// Package server hosts the Fiber HTTP service for the MapProxy admin API:
// recover, request IDs, CORS and JSON error rendering. Handlers live in the
// routes subpackage and receive their dependencies explicitly, so keep exports
// narrow and avoid package-level state.
package server
