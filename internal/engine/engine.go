package engine

import "context"

// RunOptions holds options for running a container
type RunOptions struct {
	Name        string
	Image       string
	VolumesFrom string            // Container whose volumes are attached (state transfer)
	Ports       []string          // host:container port mappings
	Env         []string          // KEY=VALUE pairs
	Labels      map[string]string // Container labels
	ExtraArgs   []string          // Engine-specific arguments placed before the image
}

// Engine is the interface that container backends must implement.
type Engine interface {
	// Name returns the engine identifier (e.g., "docker", "podman")
	Name() string

	// Pull fetches an image
	Pull(ctx context.Context, image string) error

	// Run starts a new detached container
	Run(ctx context.Context, opts RunOptions) error

	// Stop stops a running container
	Stop(ctx context.Context, name string) error

	// Remove force-removes a container
	Remove(ctx context.Context, name string) error

	// Logs returns the combined output of a container
	Logs(ctx context.Context, name string) ([]byte, error)
}
