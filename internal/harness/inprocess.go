package harness

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/errors"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/marqo"
)

// InProcess runs registered cases in this process.
type InProcess struct {
	Registry *cases.Registry
}

// NewInProcess creates an in-process harness over r.
func NewInProcess(r *cases.Registry) *InProcess {
	return &InProcess{Registry: r}
}

func (h *InProcess) Name() string {
	return "inprocess"
}

func (h *InProcess) env(req Request) (*cases.Env, error) {
	client, err := marqo.NewClient(req.APIURL)
	if err != nil {
		return nil, errors.ConfigError("invalid --marqo-api", err)
	}
	return &cases.Env{
		Client:      client,
		FromVersion: req.Filter.From,
		ToVersion:   req.Filter.To,
	}, nil
}

func selected(c cases.Case, names []string) bool {
	return len(names) == 0 || slices.Contains(names, c.Name)
}

// Prepare runs the prepare step of every case whose minimum version is at
// most the filter's from version. The first failure aborts.
func (h *InProcess) Prepare(ctx context.Context, req Request) ([]string, error) {
	env, err := h.env(req)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, c := range h.Registry.ForPrepare(req.Filter) {
		if !selected(c, req.Cases) {
			continue
		}
		logging.Debug("prepare", "case", c.Name, "from_version", c.MinVersion())
		if err := c.Prepare(ctx, env); err != nil {
			return ran, errors.PrepareFailed(c.Name, err)
		}
		ran = append(ran, c.Name)
	}
	return ran, nil
}

// Run executes the test step of every eligible case. A failing case does
// not stop the run.
func (h *InProcess) Run(ctx context.Context, req Request) (*Report, error) {
	env, err := h.env(req)
	if err != nil {
		return nil, err
	}

	report := &Report{Harness: h.Name(), Filter: req.Filter.String()}
	start := time.Now()
	for _, c := range h.Registry.ForTest(req.Filter) {
		if !selected(c, req.Cases) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("test phase interrupted: %w", err)
		}

		caseStart := time.Now()
		err := c.Test(ctx, env)
		result := CaseResult{Name: c.Name, Err: err, Duration: time.Since(caseStart)}
		if err != nil {
			logging.Debug("case failed", "case", c.Name, "error", err)
			report.Failed = append(report.Failed, result)
		} else {
			logging.Debug("case passed", "case", c.Name, "duration", result.Duration)
			report.Passed = append(report.Passed, result)
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}
