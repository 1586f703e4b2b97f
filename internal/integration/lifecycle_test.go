package integration

import (
	"context"
	"os"
	"strings"
	"testing"
)

const busyboxVersion = "1.36"

// TestLifecycle_StartStopCleanup exercises a single container against the
// real engine.
func TestLifecycle_StartStopCleanup(t *testing.T) {
	h := NewHarness(t)
	m := h.Manager(h.Options("busybox"))
	ctx := context.Background()

	t.Log("Starting container...")
	name, err := m.Start(ctx, busyboxVersion, "", "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !m.IsTracked(name) {
		t.Errorf("%s should be tracked after Start", name)
	}

	t.Log("Stopping container...")
	if err := m.Stop(ctx, busyboxVersion); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	t.Log("Cleaning up...")
	results := m.CleanupAll(ctx)
	if len(results) != 1 {
		t.Fatalf("expected 1 cleanup result, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("remove failed: %v", results[0].Err)
	}
	if results[0].LogPath == "" {
		t.Error("container logs should have been captured")
	} else if _, err := os.Stat(results[0].LogPath); err != nil {
		t.Errorf("log file missing: %v", err)
	}
	if len(m.Tracked()) != 0 {
		t.Errorf("tracked set should be empty, got %v", m.Tracked())
	}
}

// TestLifecycle_VolumeTransfer starts a second container on the volumes of
// the first, then restarts the first on the volumes of the second.
func TestLifecycle_VolumeTransfer(t *testing.T) {
	h := NewHarness(t)
	m := h.Manager(h.Options("busybox"))
	ctx := context.Background()

	from, err := m.Start(ctx, busyboxVersion, "", "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_ = m.Stop(ctx, busyboxVersion)

	to, err := m.Start(ctx, "1.37", "", from)
	if err != nil {
		t.Fatalf("Start with volumes from %s failed: %v", from, err)
	}
	_ = m.Stop(ctx, "1.37")

	t.Log("Restarting the first version on the second's volumes...")
	if _, err := m.Start(ctx, busyboxVersion, "", to); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	tracked := m.Tracked()
	if len(tracked) != 2 {
		t.Errorf("expected 2 tracked containers, got %v", tracked)
	}
	for _, r := range m.CleanupAll(ctx) {
		if r.Err != nil {
			t.Errorf("remove %s failed: %v", r.Container, r.Err)
		}
	}
}

// TestLifecycle_MissingImage checks that a pull failure is fatal.
func TestLifecycle_MissingImage(t *testing.T) {
	h := NewHarness(t)
	m := h.Manager(h.Options("busybox"))

	_, err := m.Start(context.Background(), "0.0.0-does-not-exist", "", "")
	if err == nil {
		t.Fatal("expected pull failure")
	}
	if !strings.Contains(err.Error(), "failed to pull image") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(m.Tracked()) != 0 {
		t.Errorf("nothing should be tracked, got %v", m.Tracked())
	}
}
