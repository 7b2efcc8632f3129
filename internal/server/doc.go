// Package server runs the relay's HTTP server: startup, signal-driven stop
// and graceful shutdown bounded by the configured timeout.
package server
