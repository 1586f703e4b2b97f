package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"

	"github.com/marqo-ai/compat-runner/internal/engine"
	"github.com/marqo-ai/compat-runner/internal/errors"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/system"
)

// Container labels.
const (
	LabelRun     = "compat.run"
	LabelVersion = "compat.version"
)

// Options configures container naming, publishing and timeouts.
// A zero timeout disables the deadline for that operation.
type Options struct {
	ImageRepository string
	ContainerPrefix string
	Ports           []string
	Env             []string
	ExtraArgs       []string

	PullTimeout   time.Duration
	StartTimeout  time.Duration
	StopTimeout   time.Duration
	RemoveTimeout time.Duration

	// ArtifactsDir receives container logs during cleanup. Empty disables
	// log capture.
	ArtifactsDir string
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		ImageRepository: "marqoai/marqo",
		ContainerPrefix: "marqo",
		Ports:           []string{"8882:8882"},
		PullTimeout:     15 * time.Minute,
		StartTimeout:    2 * time.Minute,
		StopTimeout:     time.Minute,
		RemoveTimeout:   time.Minute,
	}
}

// CleanupResult is the outcome of removing one tracked container.
type CleanupResult struct {
	Container string
	Version   string
	LogPath   string
	Err       error
}

// Manager starts, stops and removes the containers of one scenario.
type Manager struct {
	engine engine.Engine
	opts   Options
	runID  string
	fs     system.FileSystem

	mu      sync.Mutex
	tracked map[string]string // container name -> version
}

// Option configures a Manager.
type Option func(*Manager)

// WithRunID sets the run id instead of generating one.
func WithRunID(id string) Option {
	return func(m *Manager) {
		m.runID = id
	}
}

// WithFileSystem sets the filesystem used for log artifacts.
func WithFileSystem(fs system.FileSystem) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// NewManager creates a manager with an empty tracked set.
func NewManager(e engine.Engine, opts Options, options ...Option) *Manager {
	m := &Manager{
		engine:  e,
		opts:    opts,
		fs:      system.DefaultFS(),
		tracked: make(map[string]string),
	}
	for _, o := range options {
		o(m)
	}
	if m.runID == "" {
		m.runID = uuid.NewString()
	}
	return m
}

// RunID identifies the scenario this manager belongs to.
func (m *Manager) RunID() string {
	return m.runID
}

// EngineName returns the name of the underlying container engine.
func (m *Manager) EngineName() string {
	return m.engine.Name()
}

// ImageFor returns override, or <repository>:<version> when override is empty.
func (m *Manager) ImageFor(version, override string) string {
	if override != "" {
		return override
	}
	return m.opts.ImageRepository + ":" + version
}

// ContainerName returns <prefix>-<version>.
func (m *Manager) ContainerName(version string) string {
	return m.opts.ContainerPrefix + "-" + version
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Pull fetches image. Failure is fatal.
func (m *Manager) Pull(ctx context.Context, image string) error {
	ctx, cancel := withTimeout(ctx, m.opts.PullTimeout)
	defer cancel()

	logging.Debug("pulling image", "image", image)
	if err := m.engine.Pull(ctx, image); err != nil {
		return errors.ImagePullFailed(image, err)
	}
	return nil
}

// Start pulls the image for version and runs a detached container from
// it. When transferFrom names a container, its volumes are attached to
// the new one. A container of the same name left over from earlier in
// the scenario is removed first. The container is tracked once it runs.
func (m *Manager) Start(ctx context.Context, version, image, transferFrom string) (string, error) {
	image = m.ImageFor(version, image)
	name := m.ContainerName(version)

	if err := m.Pull(ctx, image); err != nil {
		return "", err
	}

	if m.IsTracked(name) {
		logging.Debug("replacing container from earlier in the scenario", "container", name)
		if err := m.remove(ctx, name); err != nil {
			logging.Warn("failed to remove stale container", "container", name, "error", err)
		} else {
			m.untrack(name)
		}
	}

	opts := engine.RunOptions{
		Name:        name,
		Image:       image,
		VolumesFrom: transferFrom,
		Ports:       m.opts.Ports,
		Env:         m.opts.Env,
		Labels: map[string]string{
			LabelRun:     m.runID,
			LabelVersion: version,
		},
		ExtraArgs: m.opts.ExtraArgs,
	}

	runCtx, cancel := withTimeout(ctx, m.opts.StartTimeout)
	defer cancel()
	if err := m.engine.Run(runCtx, opts); err != nil {
		return "", errors.ContainerStartFailed(version, err)
	}

	m.mu.Lock()
	m.tracked[name] = version
	m.mu.Unlock()

	logging.Info("container started", "container", name, "image", image, "volumes_from", transferFrom)
	return name, nil
}

// Stop stops the container for version. Failure is logged as a warning and
// returned only so callers can record it; it never aborts a scenario.
func (m *Manager) Stop(ctx context.Context, version string) error {
	name := m.ContainerName(version)

	ctx, cancel := withTimeout(ctx, m.opts.StopTimeout)
	defer cancel()

	if err := m.engine.Stop(ctx, name); err != nil {
		logging.Warn("failed to stop container", "container", name, "error", err)
		logging.UserWarning("Failed to stop container %s: %v", name, err)
		return err
	}
	logging.Debug("container stopped", "container", name)
	return nil
}

// IsTracked reports whether name was started by this manager and not yet
// cleaned up.
func (m *Manager) IsTracked(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tracked[name]
	return ok
}

// Tracked returns the tracked container names in sorted order.
func (m *Manager) Tracked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tracked))
	for name := range m.tracked {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) untrack(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracked, name)
}

func (m *Manager) remove(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx, m.opts.RemoveTimeout)
	defer cancel()
	return m.engine.Remove(ctx, name)
}

// ForceRemove removes the container for version whether or not this
// manager started it. Used to clear leftovers of interrupted runs.
func (m *Manager) ForceRemove(ctx context.Context, version string) error {
	name := m.ContainerName(version)
	if err := m.remove(ctx, name); err != nil {
		return errors.ContainerFailed("remove "+name, err)
	}
	m.untrack(name)
	return nil
}

// CleanupAll captures the logs of and removes every tracked container,
// then empties the tracked set. It never stops early; failures are
// logged as warnings and reported per container.
func (m *Manager) CleanupAll(ctx context.Context) []CleanupResult {
	m.mu.Lock()
	names := make([]string, 0, len(m.tracked))
	versions := make(map[string]string, len(m.tracked))
	for name, v := range m.tracked {
		names = append(names, name)
		versions[name] = v
	}
	m.mu.Unlock()
	sort.Strings(names)

	results := make([]CleanupResult, 0, len(names))
	for _, name := range names {
		result := CleanupResult{Container: name, Version: versions[name]}

		if m.opts.ArtifactsDir != "" {
			path, err := m.captureLogs(ctx, name)
			if err != nil {
				logging.Warn("failed to capture container logs", "container", name, "error", err)
			}
			result.LogPath = path
		}

		if err := m.remove(ctx, name); err != nil {
			logging.Warn("failed to remove container", "container", name, "error", err)
			logging.UserWarning("Failed to remove container %s: %v", name, err)
			result.Err = err
		} else {
			logging.Debug("container removed", "container", name)
		}
		results = append(results, result)
	}

	m.mu.Lock()
	m.tracked = make(map[string]string)
	m.mu.Unlock()

	return results
}

// LogDir is where container logs of this run are written.
func (m *Manager) LogDir() (string, error) {
	return securejoin.SecureJoin(m.opts.ArtifactsDir, filepath.Join("logs", m.runID))
}

func (m *Manager) captureLogs(ctx context.Context, name string) (string, error) {
	ctx, cancel := withTimeout(ctx, m.opts.RemoveTimeout)
	defer cancel()

	out, err := m.engine.Logs(ctx, name)
	if err != nil {
		return "", err
	}

	dir, err := m.LogDir()
	if err != nil {
		return "", err
	}
	path, err := securejoin.SecureJoin(dir, name+".log")
	if err != nil {
		return "", err
	}
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := m.fs.WriteFile(path, out, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
