// Package app provides the application context for compat-runner.
// It allows dependency injection for testing.
package app

import (
	"io"
	"os"

	"github.com/marqo-ai/compat-runner/internal/audit"
	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/config"
	"github.com/marqo-ai/compat-runner/internal/engine"
	"github.com/marqo-ai/compat-runner/internal/errors"
	"github.com/marqo-ai/compat-runner/internal/harness"
	"github.com/marqo-ai/compat-runner/internal/lifecycle"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/orchestrator"
	"github.com/marqo-ai/compat-runner/internal/system"
)

// App holds the application dependencies
type App struct {
	// Config is the effective configuration
	Config *config.Config

	// ConfigPath is the file Config was read from, if any
	ConfigPath string

	// Engine is the container engine; detected on first use when nil
	Engine engine.Engine

	// Executor runs engine and harness commands
	Executor system.CommandExecutor

	// FS receives captured container logs
	FS system.FileSystem

	// Registry holds the in-process compatibility cases
	Registry *cases.Registry

	// Output receives the output of an external test harness
	Output io.Writer

	configLoaded bool
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets the configuration; LoadConfig becomes a no-op
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
		a.configLoaded = true
	}
}

// WithEngine sets a custom container engine
func WithEngine(e engine.Engine) Option {
	return func(a *App) {
		a.Engine = e
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = exec
	}
}

// WithFileSystem sets a custom filesystem
func WithFileSystem(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithRegistry sets a custom case registry
func WithRegistry(r *cases.Registry) Option {
	return func(a *App) {
		a.Registry = r
	}
}

// WithOutput sets where external harness output goes
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.Output = w
	}
}

// New creates a new App with the given options.
// The container engine is detected on first use unless set via WithEngine.
func New(opts ...Option) *App {
	app := &App{
		Config:   config.Default(),
		Executor: system.DefaultExecutor(),
		FS:       system.DefaultFS(),
		Registry: cases.Default,
		Output:   os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// LoadConfig reads the configuration file unless one was injected.
func (a *App) LoadConfig(path string) error {
	if a.configLoaded {
		return nil
	}
	cfg, used, err := config.Load(path)
	if err != nil {
		return errors.ConfigError("failed to load configuration", err)
	}
	a.Config = cfg
	a.ConfigPath = used
	a.configLoaded = true
	if used != "" {
		logging.Debug("loaded config", "path", used)
	}
	return nil
}

// ContainerEngine returns the configured engine, detecting it if needed.
func (a *App) ContainerEngine() (engine.Engine, error) {
	if a.Engine != nil {
		return a.Engine, nil
	}
	e, err := engine.New(engine.Config{
		Type:     engine.Type(a.Config.Engine),
		Executor: a.Executor,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ExitContainerFailed, "no usable container engine", err)
	}
	a.Engine = e
	return e, nil
}

// LifecycleOptions maps the configuration onto container manager options.
func (a *App) LifecycleOptions() lifecycle.Options {
	c := a.Config
	opts := lifecycle.Options{
		ImageRepository: c.ImageRepository,
		ContainerPrefix: c.ContainerPrefix,
		Ports:           c.Ports,
		Env:             c.Env,
		ExtraArgs:       c.ExtraRunArgs,
		PullTimeout:     c.Timeouts.Pull,
		StartTimeout:    c.Timeouts.Start,
		StopTimeout:     c.Timeouts.Stop,
		RemoveTimeout:   c.Timeouts.Remove,
	}
	if c.CaptureLogs {
		opts.ArtifactsDir = c.ArtifactsDir
	}
	return opts
}

// Manager creates a container manager for a new scenario.
func (a *App) Manager(options ...lifecycle.Option) (*lifecycle.Manager, error) {
	e, err := a.ContainerEngine()
	if err != nil {
		return nil, err
	}
	options = append([]lifecycle.Option{lifecycle.WithFileSystem(a.FS)}, options...)
	return lifecycle.NewManager(e, a.LifecycleOptions(), options...), nil
}

// InProcess returns the in-process harness over the registry.
func (a *App) InProcess() *harness.InProcess {
	return harness.NewInProcess(a.Registry)
}

// Harness returns the configured test phase backend.
func (a *App) Harness() harness.Harness {
	if a.Config.Harness.Kind == config.HarnessCommand {
		return harness.NewCommand(a.Config.Harness.Command, a.Executor, a.Output)
	}
	return a.InProcess()
}

// AuditLogger returns the run event log under the artifacts directory.
func (a *App) AuditLogger() *audit.Logger {
	return audit.NewLogger(a.Config.ArtifactsDir)
}

// Orchestrator wires a scenario runner from the configuration.
func (a *App) Orchestrator(options ...lifecycle.Option) (*orchestrator.Orchestrator, error) {
	m, err := a.Manager(options...)
	if err != nil {
		return nil, err
	}

	o := &orchestrator.Orchestrator{
		Containers:     m,
		Preparer:       a.InProcess(),
		Harness:        a.Harness(),
		Audit:          a.AuditLogger(),
		CleanupTimeout: a.Config.Timeouts.Cleanup,
	}
	if a.Config.Timeouts.Ready > 0 {
		o.Ready = orchestrator.WaitForMarqo(a.Config.Timeouts.Ready)
	}
	return o, nil
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
