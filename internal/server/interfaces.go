package server

import "context"

// Server defines the lifecycle contract of the relay transport.
type Server interface {
	// Run serves requests until ctx is done, then shuts down gracefully.
	// It returns nil after a clean shutdown.
	Run(ctx context.Context) error
}
