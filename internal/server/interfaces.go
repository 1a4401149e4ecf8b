package server

import "context"

// Server is the lifecycle contract of the application server.
type Server interface {
	// RunServer serves until ctx is cancelled or a stop signal arrives.
	RunServer(ctx context.Context) error

	// Shutdown stops accepting requests and waits for in-flight ones.
	Shutdown(ctx context.Context) error
}
