// Package app provides the application context for compat-runner.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config   *config.Config          // Effective configuration
//	    Engine   engine.Engine           // Container engine
//	    Executor system.CommandExecutor  // Runs external commands
//	    Registry *cases.Registry         // In-process cases
//	}
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a := app.New()
//	if err := a.LoadConfig(configFlag); err != nil { ... }
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithConfig(cfg),
//	    app.WithEngine(engine.NewMockEngine()),
//	    app.WithRegistry(registry),
//	)
//
// # Wiring
//
// Orchestrator builds a scenario runner from the configuration: a fresh
// lifecycle.Manager, the in-process preparer, the configured harness, the
// audit log and the readiness wait.
package app
