// Package harness runs the test phase of a compatibility scenario.
//
// The orchestrator hands a harness the API address and the version filter;
// the harness owns discovery, execution, assertion and reporting. Two
// backends exist: InProcess runs registered cases directly, Command shells
// out to an external test runner such as pytest.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/marqo-ai/compat-runner/internal/version"
)

// Request describes one test phase run.
type Request struct {
	APIURL string
	Filter version.Filter

	// Cases restricts the run to the named cases. Empty means all eligible.
	Cases []string
}

// CaseResult is the outcome of a single case.
type CaseResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Report summarises a test phase run.
type Report struct {
	Harness  string
	Filter   string
	Passed   []CaseResult
	Failed   []CaseResult
	Output   string
	ExitCode int
	Duration time.Duration
}

// OK reports whether the run had no failures.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && r.ExitCode == 0
}

// FailureCount is the number of failed cases, or 1 for an external run
// that exited non-zero without per-case results.
func (r *Report) FailureCount() int {
	if n := len(r.Failed); n > 0 {
		return n
	}
	if r.ExitCode != 0 {
		return 1
	}
	return 0
}

// Summary is a one-line description of the report.
func (r *Report) Summary() string {
	if r.ExitCode != 0 && len(r.Passed)+len(r.Failed) == 0 {
		return fmt.Sprintf("%s: exited with status %d", r.Harness, r.ExitCode)
	}
	return fmt.Sprintf("%s: %d passed, %d failed", r.Harness, len(r.Passed), len(r.Failed))
}

// Harness runs a test phase. A returned error means the harness itself
// could not run; test failures are carried in the Report.
type Harness interface {
	Name() string
	Run(ctx context.Context, req Request) (*Report, error)
}
