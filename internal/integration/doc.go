// Package integration provides a test harness for integration tests
// that require a real container engine.
//
// Integration tests are skipped unless the COMPAT_RUNNER_INTEGRATION_TESTS
// environment variable is set to 1. These tests require:
//   - docker or podman on PATH with a responsive daemon
//   - network access to pull the test images
//
// # Test Harness
//
// TestHarness creates a lifecycle manager with a unique container prefix
// and removes every container it started when the test ends:
//
//	func TestMyIntegration(t *testing.T) {
//	    h := integration.NewHarness(t) // Skips if env var not set
//
//	    m := h.Manager(h.Options("busybox"))
//	    name, err := m.Start(ctx, "1.36", "", "")
//
//	    // Cleanup is automatic via t.Cleanup
//	}
//
// # Marqo Scenarios
//
// TestMarqoScenario runs a full upgrade scenario against real Marqo
// images when COMPAT_RUNNER_MARQO_FROM and COMPAT_RUNNER_MARQO_TO are set.
// It pulls multi-gigabyte images and takes several minutes.
//
// # Running Integration Tests
//
//	COMPAT_RUNNER_INTEGRATION_TESTS=1 go test -v ./internal/integration/...
package integration
