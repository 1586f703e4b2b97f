package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/marqo-ai/compat-runner/internal/engine"
	"github.com/marqo-ai/compat-runner/internal/lifecycle"
)

// Environment variables controlling integration tests.
const (
	EnvEnabled   = "COMPAT_RUNNER_INTEGRATION_TESTS"
	EnvEngine    = "COMPAT_RUNNER_ENGINE"
	EnvMarqoFrom = "COMPAT_RUNNER_MARQO_FROM"
	EnvMarqoTo   = "COMPAT_RUNNER_MARQO_TO"
)

// TestHarness provides utilities for integration testing with real containers.
type TestHarness struct {
	t        *testing.T
	tempDir  string
	prefix   string
	engine   engine.Engine
	managers []*lifecycle.Manager
}

// Enabled reports whether integration tests were requested.
func Enabled() bool {
	return os.Getenv(EnvEnabled) == "1"
}

// NewHarness creates a new test harness.
// It will skip the test if COMPAT_RUNNER_INTEGRATION_TESTS is not set or no
// container engine responds.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	if !Enabled() {
		t.Skipf("integration tests disabled (set %s=1 to enable)", EnvEnabled)
	}

	e, err := engine.New(engine.Config{Type: engine.Type(os.Getenv(EnvEngine))})
	if err != nil {
		t.Skipf("no container engine available: %v", err)
	}

	h := &TestHarness{
		t:       t,
		tempDir: t.TempDir(),
		prefix:  "compat-it-" + uuid.NewString()[:8],
		engine:  e,
	}

	t.Cleanup(h.Cleanup)

	return h
}

// Engine returns the container engine.
func (h *TestHarness) Engine() engine.Engine {
	return h.engine
}

// ArtifactsDir returns the per-test artifacts directory.
func (h *TestHarness) ArtifactsDir() string {
	return h.tempDir
}

// Options returns manager options for repository with a prefix unique to
// this test and no published ports.
func (h *TestHarness) Options(repository string) lifecycle.Options {
	opts := lifecycle.DefaultOptions()
	opts.ImageRepository = repository
	opts.ContainerPrefix = h.prefix
	opts.Ports = nil
	opts.ArtifactsDir = h.tempDir
	return opts
}

// Manager creates a lifecycle manager whose containers are removed when
// the test ends.
func (h *TestHarness) Manager(opts lifecycle.Options) *lifecycle.Manager {
	m := lifecycle.NewManager(h.engine, opts)
	h.managers = append(h.managers, m)
	return m
}

// Cleanup removes all containers still tracked by the harness managers.
func (h *TestHarness) Cleanup() {
	ctx := context.Background()

	for _, m := range h.managers {
		for _, r := range m.CleanupAll(ctx) {
			if r.Err != nil {
				h.t.Logf("Warning: failed to remove container %s: %v", r.Container, r.Err)
			}
		}
	}
}
