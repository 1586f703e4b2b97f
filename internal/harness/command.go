package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/system"
)

// DefaultCommand runs the Python compatibility suite with pytest.
const DefaultCommand = "pytest --marqo-api={api} -m {filter}"

// Command runs an external test runner.
//
// Template is split like a shell would split it; placeholders are then
// replaced inside each word, so a filter containing spaces stays a single
// argument:
//
//	{api}     the Marqo API URL
//	{filter}  the marker expression, e.g. marqo_from_version<='2.5' or marqo_version<='2.6'
//	{from}    the from version
//	{to}      the to version
type Command struct {
	Template string
	Executor system.CommandExecutor

	// Output receives the runner's output as it is produced. May be nil.
	Output io.Writer
}

// NewCommand creates a command harness. An empty template means DefaultCommand.
func NewCommand(template string, exec system.CommandExecutor, out io.Writer) *Command {
	if template == "" {
		template = DefaultCommand
	}
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	return &Command{Template: template, Executor: exec, Output: out}
}

func (h *Command) Name() string {
	return "command"
}

// Argv returns the command line for req.
func (h *Command) Argv(req Request) ([]string, error) {
	words, err := shellquote.Split(h.Template)
	if err != nil {
		return nil, fmt.Errorf("invalid harness command %q: %w", h.Template, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("harness command is empty")
	}

	r := strings.NewReplacer(
		"{api}", req.APIURL,
		"{filter}", req.Filter.String(),
		"{from}", req.Filter.From,
		"{to}", req.Filter.To,
	)
	for i, w := range words {
		words[i] = r.Replace(w)
	}
	return words, nil
}

// Run executes the command. A non-zero exit is a failed report; failing
// to start the command at all is an error.
func (h *Command) Run(ctx context.Context, req Request) (*Report, error) {
	argv, err := h.Argv(req)
	if err != nil {
		return nil, err
	}
	if len(req.Cases) > 0 {
		logging.Warn("case selection is not supported by the command harness, running all", "cases", req.Cases)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if h.Output != nil {
		out = io.MultiWriter(&buf, h.Output)
	}

	logging.Debug("running harness command", "command", shellquote.Join(argv...))
	start := time.Now()
	runErr := h.Executor.ExecuteStreaming(ctx, out, out, argv[0], argv[1:]...)

	report := &Report{
		Harness:  h.Name(),
		Filter:   req.Filter.String(),
		Output:   buf.String(),
		Duration: time.Since(start),
	}
	if runErr == nil {
		return report, nil
	}
	if ctx.Err() != nil {
		return report, fmt.Errorf("harness command interrupted: %w", ctx.Err())
	}

	code := system.ExitCode(runErr)
	if code < 0 {
		return report, fmt.Errorf("failed to run %s: %w", argv[0], runErr)
	}
	report.ExitCode = code
	return report, nil
}
