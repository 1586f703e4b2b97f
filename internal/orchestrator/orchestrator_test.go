package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqo-ai/compat-runner/internal/audit"
	"github.com/marqo-ai/compat-runner/internal/engine"
	"github.com/marqo-ai/compat-runner/internal/errors"
	"github.com/marqo-ai/compat-runner/internal/harness"
	"github.com/marqo-ai/compat-runner/internal/lifecycle"
)

type fakePreparer struct {
	timeline *[]string
	err      error
	requests []harness.Request
}

func (p *fakePreparer) Prepare(ctx context.Context, req harness.Request) ([]string, error) {
	*p.timeline = append(*p.timeline, "prepare")
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return []string{"index-persistence"}, nil
}

type fakeHarness struct {
	timeline *[]string
	failed   int
	err      error
	onRun    func()
	requests []harness.Request
}

func (h *fakeHarness) Name() string { return "fake" }

func (h *fakeHarness) Run(ctx context.Context, req harness.Request) (*harness.Report, error) {
	*h.timeline = append(*h.timeline, "test")
	h.requests = append(h.requests, req)
	if h.onRun != nil {
		h.onRun()
	}
	if h.err != nil {
		return nil, h.err
	}
	report := &harness.Report{Harness: "fake", Passed: []harness.CaseResult{{Name: "ok"}}}
	for i := 0; i < h.failed; i++ {
		report.Failed = append(report.Failed, harness.CaseResult{Name: fmt.Sprintf("bad-%d", i), Err: fmt.Errorf("mismatch")})
	}
	return report, nil
}

type fixture struct {
	timeline []string
	engine   *engine.MockEngine
	preparer *fakePreparer
	harness  *fakeHarness
	orch     *Orchestrator
	readyErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{engine: engine.NewMockEngine()}
	f.engine.OnCall = func(c engine.MockCall) {
		f.timeline = append(f.timeline, c.String())
	}
	f.preparer = &fakePreparer{timeline: &f.timeline}
	f.harness = &fakeHarness{timeline: &f.timeline}
	f.orch = &Orchestrator{
		Containers: lifecycle.NewManager(f.engine, lifecycle.DefaultOptions(), lifecycle.WithRunID("run-1")),
		Preparer:   f.preparer,
		Harness:    f.harness,
		Ready: func(ctx context.Context, apiURL string) error {
			f.timeline = append(f.timeline, "ready")
			return f.readyErr
		},
	}
	return f
}

var params = Params{FromVersion: "2.5", ToVersion: "2.6", APIURL: "http://localhost:8882"}

var upgradeTimeline = []string{
	"Pull(marqoai/marqo:2.5)",
	"Run(marqo-2.5)",
	"ready",
	"prepare",
	"Stop(marqo-2.5)",
	"Pull(marqoai/marqo:2.6)",
	"Run(marqo-2.6, volumes-from=marqo-2.5)",
	"ready",
	"test",
	"Stop(marqo-2.6)",
}

func TestUpgrade(t *testing.T) {
	f := newFixture(t)

	res := f.orch.Upgrade(context.Background(), params)
	require.NoError(t, res.Err)
	assert.NoError(t, res.ExitErr())

	want := append(append([]string{}, upgradeTimeline...), "Remove(marqo-2.5)", "Remove(marqo-2.6)")
	assert.Equal(t, want, f.timeline)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, ModeUpgrade, res.Mode)
	assert.Equal(t, []string{"index-persistence"}, res.Prepared)
	assert.Len(t, res.Reports, 1)
	assert.Len(t, res.Cleanup, 2)
	assert.Empty(t, f.engine.Containers)

	require.Len(t, f.harness.requests, 1)
	req := f.harness.requests[0]
	assert.Equal(t, "http://localhost:8882", req.APIURL)
	assert.Equal(t, "marqo_from_version<='2.5' or marqo_version<='2.6'", req.Filter.String())
	assert.Equal(t, "2.5", f.preparer.requests[0].Filter.From)
}

func TestUpgrade_ImageOverrides(t *testing.T) {
	f := newFixture(t)
	p := params
	p.FromImage = "registry.local/marqo:2.5-patched"
	p.ToImage = "registry.local/marqo:main"

	res := f.orch.Upgrade(context.Background(), p)
	require.NoError(t, res.Err)
	assert.Contains(t, f.timeline, "Pull(registry.local/marqo:2.5-patched)")
	assert.Contains(t, f.timeline, "Pull(registry.local/marqo:main)")
}

func TestRollback(t *testing.T) {
	f := newFixture(t)

	res := f.orch.Rollback(context.Background(), params)
	require.NoError(t, res.Err)

	want := append(append([]string{}, upgradeTimeline...),
		"Stop(marqo-2.6)",
		"Pull(marqoai/marqo:2.5)",
		"Remove(marqo-2.5)",
		"Run(marqo-2.5, volumes-from=marqo-2.6)",
		"ready",
		"test",
		"Stop(marqo-2.5)",
		"Remove(marqo-2.5)",
		"Remove(marqo-2.6)",
	)
	assert.Equal(t, want, f.timeline)

	assert.Equal(t, ModeRollback, res.Mode)
	assert.Len(t, f.engine.GetCallsFor("Run"), 3)
	assert.Len(t, res.Reports, 2)
	assert.Len(t, res.Prepared, 1, "prepare runs once")
	require.Len(t, res.Cleanup, 2)
	for _, c := range res.Cleanup {
		assert.NoError(t, c.Err)
	}
	assert.Empty(t, f.engine.Containers)
}

func TestRun_DispatchesOnMode(t *testing.T) {
	f := newFixture(t)
	res := f.orch.Run(context.Background(), ModeRollback, params)
	assert.Equal(t, ModeRollback, res.Mode)
	assert.Len(t, f.harness.requests, 2)
}

func TestUpgrade_PullFailure(t *testing.T) {
	f := newFixture(t)
	f.engine.SetError("Pull:marqoai/marqo:2.5", fmt.Errorf("manifest unknown"))

	res := f.orch.Upgrade(context.Background(), params)
	require.Error(t, res.Err)
	assert.Equal(t, errors.ExitContainerFailed, errors.GetExitCode(res.ExitErr()))
	assert.Equal(t, []string{"Pull(marqoai/marqo:2.5)", "Stop(marqo-2.6)"}, f.timeline)
	assert.Empty(t, res.Cleanup)
}

func TestUpgrade_PrepareFailure(t *testing.T) {
	f := newFixture(t)
	f.preparer.err = errors.PrepareFailed("index-persistence", fmt.Errorf("index exists"))

	res := f.orch.Upgrade(context.Background(), params)
	require.Error(t, res.Err)
	assert.Equal(t, errors.ExitPrepareFailed, errors.GetExitCode(res.ExitErr()))
	assert.Equal(t, []string{
		"Pull(marqoai/marqo:2.5)",
		"Run(marqo-2.5)",
		"ready",
		"prepare",
		"Stop(marqo-2.6)",
		"Remove(marqo-2.5)",
	}, f.timeline)
	assert.Empty(t, f.harness.requests)
}

func TestUpgrade_ToStartFailure(t *testing.T) {
	f := newFixture(t)
	f.engine.SetError("Run:marqo-2.6", fmt.Errorf("no space left on device"))

	res := f.orch.Upgrade(context.Background(), params)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "version 2.6")
	assert.Equal(t, []string{"Stop(marqo-2.6)", "Remove(marqo-2.5)"}, f.timeline[len(f.timeline)-2:])
	assert.Empty(t, f.engine.Containers)
}

func TestUpgrade_NotReady(t *testing.T) {
	f := newFixture(t)
	f.readyErr = context.DeadlineExceeded

	res := f.orch.Upgrade(context.Background(), params)
	require.Error(t, res.Err)
	assert.Equal(t, errors.ExitContainerFailed, errors.GetExitCode(res.Err))
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.NotContains(t, f.timeline, "prepare")
	assert.Empty(t, f.engine.Containers)
}

func TestUpgrade_ReadinessDisabled(t *testing.T) {
	f := newFixture(t)
	f.orch.Ready = nil

	res := f.orch.Upgrade(context.Background(), params)
	require.NoError(t, res.Err)
	assert.NotContains(t, f.timeline, "ready")
}

func TestUpgrade_TestFailuresAreReported(t *testing.T) {
	f := newFixture(t)
	f.harness.failed = 2

	res := f.orch.Upgrade(context.Background(), params)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Failures())
	assert.Equal(t, errors.ExitTestsFailed, errors.GetExitCode(res.ExitErr()))
	assert.Len(t, res.Cleanup, 2)
}

func TestRollback_ContinuesAfterTestFailures(t *testing.T) {
	f := newFixture(t)
	f.harness.failed = 1

	res := f.orch.Rollback(context.Background(), params)
	require.NoError(t, res.Err)
	assert.Len(t, res.Reports, 2)
	assert.Equal(t, 2, res.Failures())
}

func TestUpgrade_HarnessError(t *testing.T) {
	f := newFixture(t)
	f.harness.err = fmt.Errorf(`exec: "pytest": executable file not found`)

	res := f.orch.Upgrade(context.Background(), params)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "test harness failed")
	assert.Len(t, res.Cleanup, 2)
}

func TestRollback_UpgradeFailureSkipsRollbackSteps(t *testing.T) {
	f := newFixture(t)
	f.engine.SetError("Run:marqo-2.6", fmt.Errorf("boom"))

	res := f.orch.Rollback(context.Background(), params)
	require.Error(t, res.Err)
	assert.Len(t, f.engine.GetCallsFor("Run"), 2)
	assert.Equal(t, []string{"Stop(marqo-2.6)", "Stop(marqo-2.5)", "Remove(marqo-2.5)"}, f.timeline[len(f.timeline)-3:])
}

func TestUpgrade_StopFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.engine.SetError("Stop:marqo-2.5", fmt.Errorf("timeout"))

	res := f.orch.Upgrade(context.Background(), params)
	assert.NoError(t, res.ExitErr())
	assert.Len(t, res.Reports, 1)
}

func TestUpgrade_CleanupFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.engine.SetError("Remove:marqo-2.5", fmt.Errorf("device busy"))

	res := f.orch.Upgrade(context.Background(), params)
	assert.NoError(t, res.ExitErr())
	require.Len(t, res.Cleanup, 2)
	assert.Error(t, res.Cleanup[0].Err)
	assert.NoError(t, res.Cleanup[1].Err)
	assert.Empty(t, f.orch.Containers.Tracked())
}

func TestUpgrade_InterruptStillCleansUp(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.harness.onRun = cancel
	f.harness.err = context.Canceled

	res := f.orch.Upgrade(ctx, params)
	require.Error(t, res.Err)
	assert.Equal(t, []string{"test", "Stop(marqo-2.6)", "Remove(marqo-2.5)", "Remove(marqo-2.6)"}, f.timeline[len(f.timeline)-4:])
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"missing from", Params{ToVersion: "2.6", APIURL: "http://x"}},
		{"missing to", Params{FromVersion: "2.5", APIURL: "http://x"}},
		{"same version", Params{FromVersion: "2.5", ToVersion: "2.5", APIURL: "http://x"}},
		{"bad version", Params{FromVersion: "2.5", ToVersion: "latest/main", APIURL: "http://x"}},
		{"missing api", Params{FromVersion: "2.5", ToVersion: "2.6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res := f.orch.Upgrade(context.Background(), tt.params)
			require.Error(t, res.Err)
			assert.Empty(t, f.timeline)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("rollback")
	require.NoError(t, err)
	assert.Equal(t, ModeRollback, m)

	m, err = ParseMode("backwards_compatibility")
	require.NoError(t, err)
	assert.Equal(t, ModeUpgrade, m)

	_, err = ParseMode("upgrade")
	assert.Error(t, err)
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	f.orch.Audit = audit.NewLogger(t.TempDir())

	res := f.orch.Rollback(context.Background(), params)
	require.NoError(t, res.Err)

	events, err := f.orch.Audit.Events("run-1")
	require.NoError(t, err)

	var types []audit.EventType
	for _, e := range events {
		types = append(types, e.Type)
		assert.Equal(t, "run-1", e.Run)
	}
	assert.Equal(t, []audit.EventType{
		audit.EventScenarioStart,
		audit.EventStart, audit.EventReady, audit.EventPrepare, audit.EventStop,
		audit.EventStart, audit.EventReady, audit.EventTest, audit.EventStop,
		audit.EventStop,
		audit.EventStart, audit.EventReady, audit.EventTest, audit.EventStop,
		audit.EventCleanup, audit.EventCleanup,
		audit.EventScenarioEnd,
	}, types)
	assert.Equal(t, "volumes-from=marqo-2.5", events[5].Details)
}
