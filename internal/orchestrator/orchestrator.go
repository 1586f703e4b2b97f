package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marqo-ai/compat-runner/internal/audit"
	"github.com/marqo-ai/compat-runner/internal/errors"
	"github.com/marqo-ai/compat-runner/internal/harness"
	"github.com/marqo-ai/compat-runner/internal/lifecycle"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/marqo"
	"github.com/marqo-ai/compat-runner/internal/version"
)

// Mode selects the scenario.
type Mode string

const (
	ModeUpgrade  Mode = "backwards_compatibility"
	ModeRollback Mode = "rollback"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeUpgrade, ModeRollback:
		return Mode(s), nil
	}
	return "", errors.ValidationError(fmt.Sprintf("invalid mode %q: must be %s or %s", s, ModeUpgrade, ModeRollback))
}

// DefaultCleanupTimeout bounds the stops and removals that run after a
// scenario was interrupted.
const DefaultCleanupTimeout = 3 * time.Minute

// Params are the inputs of one scenario. They do not change once it starts.
type Params struct {
	FromVersion string
	ToVersion   string
	FromImage   string
	ToImage     string
	APIURL      string

	// Cases restricts both phases to the named cases.
	Cases []string
}

// Validate checks the parameters before any container is touched.
func (p Params) Validate() error {
	if p.FromVersion == "" || p.ToVersion == "" {
		return errors.ValidationError("both --from_version and --to_version are required")
	}
	for _, v := range []string{p.FromVersion, p.ToVersion} {
		if err := version.Validate(v); err != nil {
			return errors.ValidationError(err.Error())
		}
	}
	if p.FromVersion == p.ToVersion {
		return errors.ValidationError(fmt.Sprintf("from and to versions are both %s", p.FromVersion))
	}
	if p.APIURL == "" {
		return errors.ValidationError("--marqo-api cannot be empty")
	}
	return nil
}

func (p Params) request() harness.Request {
	return harness.Request{
		APIURL: p.APIURL,
		Filter: version.NewFilter(p.FromVersion, p.ToVersion),
		Cases:  p.Cases,
	}
}

// Preparer runs the prepare phase.
type Preparer interface {
	Prepare(ctx context.Context, req harness.Request) ([]string, error)
}

// ReadyFunc blocks until the server at apiURL answers.
type ReadyFunc func(ctx context.Context, apiURL string) error

// WaitForMarqo returns a ReadyFunc polling the Marqo root endpoint for at
// most timeout.
func WaitForMarqo(timeout time.Duration) ReadyFunc {
	return func(ctx context.Context, apiURL string) error {
		client, err := marqo.NewClient(apiURL)
		if err != nil {
			return err
		}
		_, err = client.WaitReady(ctx, timeout)
		return err
	}
}

// Orchestrator runs scenarios.
type Orchestrator struct {
	Containers *lifecycle.Manager
	Preparer   Preparer
	Harness    harness.Harness

	// Ready, when set, is called after every container start.
	Ready ReadyFunc

	// Audit, when set, records every step.
	Audit *audit.Logger

	CleanupTimeout time.Duration
}

// Result is the outcome of a scenario.
type Result struct {
	RunID    string
	Mode     Mode
	Params   Params
	Prepared []string
	Reports  []*harness.Report
	Cleanup  []lifecycle.CleanupResult
	Duration time.Duration

	// Err is the fatal error that aborted the scenario, if any.
	Err error

	started time.Time
}

// Failures is the number of failed cases across all test phases.
func (r *Result) Failures() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.FailureCount()
	}
	return n
}

// ExitErr is Err, or a tests-failed error when any test phase reported
// failures.
func (r *Result) ExitErr() error {
	if r.Err != nil {
		return r.Err
	}
	if n := r.Failures(); n > 0 {
		return errors.TestsFailed(n)
	}
	return nil
}

// Run runs the scenario selected by mode.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, p Params) *Result {
	switch mode {
	case ModeRollback:
		return o.Rollback(ctx, p)
	default:
		return o.Upgrade(ctx, p)
	}
}

// Upgrade runs the upgrade scenario.
func (o *Orchestrator) Upgrade(ctx context.Context, p Params) *Result {
	res := o.begin(ModeUpgrade, p)
	if res.Err != nil {
		return res
	}
	res.Err = o.upgrade(ctx, p, res)
	o.finish(ctx, res)
	return res
}

// Rollback runs the upgrade steps, then restarts the from version on the
// upgraded state and tests again.
func (o *Orchestrator) Rollback(ctx context.Context, p Params) *Result {
	res := o.begin(ModeRollback, p)
	if res.Err != nil {
		return res
	}
	res.Err = o.rollback(ctx, p, res)
	o.finish(ctx, res)
	return res
}

func (o *Orchestrator) upgrade(ctx context.Context, p Params, res *Result) error {
	defer o.stop(ctx, res, p.ToVersion)

	if err := o.start(ctx, res, p, p.FromVersion, p.FromImage, ""); err != nil {
		return err
	}
	if err := o.prepare(ctx, res, p); err != nil {
		return err
	}
	o.stop(ctx, res, p.FromVersion)

	from := o.Containers.ContainerName(p.FromVersion)
	if err := o.start(ctx, res, p, p.ToVersion, p.ToImage, from); err != nil {
		return err
	}
	return o.test(ctx, res, p)
}

func (o *Orchestrator) rollback(ctx context.Context, p Params, res *Result) error {
	defer o.stop(ctx, res, p.FromVersion)

	if err := o.upgrade(ctx, p, res); err != nil {
		return err
	}
	// Already stopped by the upgrade; stopping again is harmless.
	o.stop(ctx, res, p.ToVersion)

	to := o.Containers.ContainerName(p.ToVersion)
	if err := o.start(ctx, res, p, p.FromVersion, p.FromImage, to); err != nil {
		return err
	}
	return o.test(ctx, res, p)
}

func (o *Orchestrator) begin(mode Mode, p Params) *Result {
	res := &Result{
		RunID:   o.Containers.RunID(),
		Mode:    mode,
		Params:  p,
		started: time.Now(),
	}
	if err := p.Validate(); err != nil {
		res.Err = err
		return res
	}

	logging.Info("scenario started", "run", res.RunID, "mode", mode, "from", p.FromVersion, "to", p.ToVersion, "engine", o.Containers.EngineName())
	o.record(res, audit.Event{
		Type:    audit.EventScenarioStart,
		Details: fmt.Sprintf("mode=%s from=%s to=%s", mode, p.FromVersion, p.ToVersion),
	})
	return res
}

// teardownContext survives cancellation of ctx so stops and cleanup still
// run after an interrupt, but is bounded by CleanupTimeout.
func (o *Orchestrator) teardownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.CleanupTimeout
	if timeout <= 0 {
		timeout = DefaultCleanupTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (o *Orchestrator) finish(ctx context.Context, res *Result) {
	tctx, cancel := o.teardownContext(ctx)
	defer cancel()

	res.Cleanup = o.Containers.CleanupAll(tctx)
	for _, c := range res.Cleanup {
		ev := audit.Event{Type: audit.EventCleanup, Version: c.Version, Container: c.Container}
		if c.LogPath != "" {
			ev.Details = "logs=" + c.LogPath
		}
		if c.Err != nil {
			ev.Error = c.Err.Error()
		}
		o.record(res, ev)
	}

	res.Duration = time.Since(res.started)
	end := audit.Event{Type: audit.EventScenarioEnd, Details: fmt.Sprintf("failures=%d", res.Failures())}
	if res.Err != nil {
		end.Error = res.Err.Error()
	}
	o.record(res, end)
}

func (o *Orchestrator) start(ctx context.Context, res *Result, p Params, v, image, transferFrom string) error {
	name, err := o.Containers.Start(ctx, v, image, transferFrom)
	ev := audit.Event{Type: audit.EventStart, Version: v, Container: name}
	if transferFrom != "" {
		ev.Details = "volumes-from=" + transferFrom
	}
	if err != nil {
		ev.Error = err.Error()
		o.record(res, ev)
		return err
	}
	o.record(res, ev)

	if o.Ready == nil {
		return nil
	}
	start := time.Now()
	if err := o.Ready(ctx, p.APIURL); err != nil {
		err = errors.NotReady(p.APIURL, err)
		o.record(res, audit.Event{Type: audit.EventReady, Version: v, Container: name, Error: err.Error()})
		return err
	}
	o.record(res, audit.Event{
		Type:      audit.EventReady,
		Version:   v,
		Container: name,
		Details:   "waited=" + time.Since(start).Round(time.Millisecond).String(),
	})
	return nil
}

func (o *Orchestrator) stop(ctx context.Context, res *Result, v string) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = o.teardownContext(ctx)
		defer cancel()
	}

	ev := audit.Event{Type: audit.EventStop, Version: v, Container: o.Containers.ContainerName(v)}
	if err := o.Containers.Stop(ctx, v); err != nil {
		ev.Error = err.Error()
	}
	o.record(res, ev)
}

func (o *Orchestrator) prepare(ctx context.Context, res *Result, p Params) error {
	if o.Preparer == nil {
		return nil
	}

	ran, err := o.Preparer.Prepare(ctx, p.request())
	res.Prepared = append(res.Prepared, ran...)
	ev := audit.Event{Type: audit.EventPrepare, Version: p.FromVersion, Details: strings.Join(ran, ",")}
	if err != nil {
		ev.Error = err.Error()
		o.record(res, ev)
		return err
	}
	o.record(res, ev)
	logging.Info("prepare phase complete", "cases", len(ran))
	return nil
}

func (o *Orchestrator) test(ctx context.Context, res *Result, p Params) error {
	req := p.request()
	logging.Info("running test phase", "harness", o.Harness.Name(), "filter", req.Filter.String())

	report, err := o.Harness.Run(ctx, req)
	if report != nil {
		res.Reports = append(res.Reports, report)
	}
	ev := audit.Event{Type: audit.EventTest, Details: req.Filter.String()}
	if err != nil {
		ev.Error = err.Error()
		o.record(res, ev)
		return errors.Wrap(errors.ExitGeneralError, "test harness failed", err)
	}
	ev.Details = report.Summary()
	o.record(res, ev)

	if report.OK() {
		logging.Info("test phase passed", "summary", report.Summary())
	} else {
		logging.Warn("test phase reported failures", "summary", report.Summary())
	}
	return nil
}

func (o *Orchestrator) record(res *Result, ev audit.Event) {
	if o.Audit == nil {
		return
	}
	ev.Run = res.RunID
	if err := o.Audit.Log(ev); err != nil {
		logging.Debug("failed to write audit event", "type", ev.Type, "error", err)
	}
}
