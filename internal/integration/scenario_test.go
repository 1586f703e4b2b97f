package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/marqo-ai/compat-runner/internal/audit"
	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/harness"
	"github.com/marqo-ai/compat-runner/internal/orchestrator"
	"github.com/marqo-ai/compat-runner/internal/suites"
)

// TestMarqoScenario runs the built-in cases through a real upgrade and
// rollback between two published Marqo versions.
func TestMarqoScenario(t *testing.T) {
	h := NewHarness(t)

	from, to := os.Getenv(EnvMarqoFrom), os.Getenv(EnvMarqoTo)
	if from == "" || to == "" {
		t.Skipf("set %s and %s to run Marqo scenarios", EnvMarqoFrom, EnvMarqoTo)
	}

	reg := cases.NewRegistry()
	suites.RegisterAll(reg)
	inproc := harness.NewInProcess(reg)

	for _, mode := range []orchestrator.Mode{orchestrator.ModeUpgrade, orchestrator.ModeRollback} {
		t.Run(string(mode), func(t *testing.T) {
			opts := h.Options("marqoai/marqo")
			opts.Ports = []string{"8882:8882"}

			o := &orchestrator.Orchestrator{
				Containers: h.Manager(opts),
				Preparer:   inproc,
				Harness:    inproc,
				Ready:      orchestrator.WaitForMarqo(10 * time.Minute),
				Audit:      audit.NewLogger(h.ArtifactsDir()),
			}

			res := o.Run(context.Background(), mode, orchestrator.Params{
				FromVersion: from,
				ToVersion:   to,
				APIURL:      "http://localhost:8882",
			})
			if err := res.ExitErr(); err != nil {
				t.Fatalf("%s scenario failed: %v", mode, err)
			}
			if len(res.Prepared) == 0 {
				t.Error("no cases were prepared")
			}
			for _, c := range res.Cleanup {
				if c.Err != nil {
					t.Errorf("cleanup of %s failed: %v", c.Container, c.Err)
				}
			}
		})
	}
}
