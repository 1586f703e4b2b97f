package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/orchestrator"
	"github.com/marqo-ai/compat-runner/internal/version"
)

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)

var (
	summaryTitle = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// printResult writes the scenario summary.
func printResult(w io.Writer, res *orchestrator.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryTitle.Render(fmt.Sprintf("%s %s -> %s", res.Mode, res.Params.FromVersion, res.Params.ToVersion)))
	fmt.Fprintln(w, dimStyle.Render("run "+res.RunID))

	if len(res.Prepared) > 0 {
		fmt.Fprintf(w, "  prepare: %s\n", strings.Join(res.Prepared, ", "))
	}

	for i, rep := range res.Reports {
		label := "test"
		if res.Mode == orchestrator.ModeRollback && i == 1 {
			label = "rollback test"
		}
		style := passStyle
		if !rep.OK() {
			style = failStyle
		}
		fmt.Fprintf(w, "  %s: %s\n", label, style.Render(rep.Summary()))
		for _, f := range rep.Failed {
			fmt.Fprintf(w, "    %s %s: %v\n", failStyle.Render("✗"), f.Name, f.Err)
		}
	}

	for _, c := range res.Cleanup {
		if c.Err != nil {
			fmt.Fprintf(w, "  cleanup: %s %s: %v\n", failStyle.Render("✗"), c.Container, c.Err)
		} else if c.LogPath != "" {
			fmt.Fprintf(w, "  logs: %s\n", c.LogPath)
		}
	}

	if res.ExitErr() == nil {
		logSuccess("Compatibility checks passed in %s", res.Duration.Round(time.Millisecond))
	}
}

// phaseCases returns the registry cases for the requested phase and
// versions. Empty versions disable filtering.
func phaseCases(r *cases.Registry, phase, from, to string) ([]cases.Case, error) {
	if from == "" && to == "" {
		return r.All(), nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("--from_version and --to_version must be given together")
	}
	for _, v := range []string{from, to} {
		if err := version.Validate(v); err != nil {
			return nil, err
		}
	}

	f := version.NewFilter(from, to)
	switch phase {
	case "prepare":
		return r.ForPrepare(f), nil
	case "test", "":
		return r.ForTest(f), nil
	default:
		return nil, fmt.Errorf("invalid phase %q: must be prepare or test", phase)
	}
}
