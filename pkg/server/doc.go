// Package server exposes the diff pipeline over HTTP and WebSocket.
//
// POST /v1/diff computes patches between two documents in one shot.
// POST /v1/publish replaces a named document's current version and
// broadcasts the resulting patches as binary frames to every WebSocket
// subscriber on GET /ws?doc=name. /metrics serves Prometheus metrics.
package server
