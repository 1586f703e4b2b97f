package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/system"
)

// CLIEngine implements the Engine interface by invoking the docker or
// podman command line.
type CLIEngine struct {
	// Command is the container command to use (docker or podman)
	Command string

	// Executor runs the engine commands
	Executor system.CommandExecutor
}

// NewCLIEngine creates an engine driving the given command.
func NewCLIEngine(command string, executor system.CommandExecutor) *CLIEngine {
	if executor == nil {
		executor = system.DefaultExecutor()
	}
	return &CLIEngine{Command: command, Executor: executor}
}

// Name returns the engine identifier
func (e *CLIEngine) Name() string {
	return e.Command
}

// runCmd executes an engine command and returns its output
func (e *CLIEngine) runCmd(ctx context.Context, args ...string) ([]byte, error) {
	logging.Debug("engine command", "cmd", shellquote.Join(append([]string{e.Command}, args...)...))

	out, err := e.Executor.Execute(ctx, e.Command, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("%s %s: %w", e.Command, args[0], ctxErr)
		}
		return out, fmt.Errorf("%s %s failed: %s: %w", e.Command, args[0], strings.TrimSpace(string(out)), err)
	}
	return out, nil
}

// Pull fetches an image
func (e *CLIEngine) Pull(ctx context.Context, image string) error {
	_, err := e.runCmd(ctx, "pull", image)
	return err
}

// runArgs builds the argument list for a detached run
func runArgs(opts RunOptions) []string {
	args := []string{"run", "-d", "--name", opts.Name}

	if opts.VolumesFrom != "" {
		args = append(args, "--volumes-from", opts.VolumesFrom)
	}

	for _, p := range opts.Ports {
		args = append(args, "-p", p)
	}

	for _, env := range opts.Env {
		args = append(args, "-e", env)
	}

	keys := make([]string, 0, len(opts.Labels))
	for k := range opts.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--label", k+"="+opts.Labels[k])
	}

	args = append(args, opts.ExtraArgs...)

	return append(args, opts.Image)
}

// Run starts a new detached container
func (e *CLIEngine) Run(ctx context.Context, opts RunOptions) error {
	if opts.Name == "" || opts.Image == "" {
		return fmt.Errorf("run requires a container name and an image")
	}
	_, err := e.runCmd(ctx, runArgs(opts)...)
	return err
}

// Stop stops a running container
func (e *CLIEngine) Stop(ctx context.Context, name string) error {
	_, err := e.runCmd(ctx, "stop", name)
	return err
}

// Remove force-removes a container
func (e *CLIEngine) Remove(ctx context.Context, name string) error {
	_, err := e.runCmd(ctx, "rm", "-f", name)
	return err
}

// Logs returns the combined output of a container
func (e *CLIEngine) Logs(ctx context.Context, name string) ([]byte, error) {
	return e.runCmd(ctx, "logs", name)
}

var _ Engine = (*CLIEngine)(nil)
