// Package engine provides a unified interface for container engines.
//
// Supported engines:
//   - docker: Docker CLI
//   - podman: Podman CLI (same command syntax as docker)
//
// Engine selection is automatic based on available tools unless a type is
// forced through Config. Both backends are driven through the engine's
// command line via system.CommandExecutor, so any CLI-compatible engine
// that supports pull, run, stop, rm -f and logs can be substituted.
//
// # Engine Interface
//
// The Engine interface defines the operations the lifecycle manager needs:
//   - Pull: fetch an image
//   - Run: start a detached, named container, optionally attaching the
//     volumes of another container (--volumes-from)
//   - Stop, Remove: stop and force-remove a container by name
//   - Logs: capture a container's output
//
// # Mock Engine
//
// For testing, use NewMockEngine() to create an implementation that
// simulates container state, supports error injection per operation and
// records every call for order assertions.
package engine
