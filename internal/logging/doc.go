// Package logging provides logging utilities for compat-runner.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("starting container", "container", name, "image", image)
//	logging.Warn("failed to stop container", "container", name, "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Pulling %s...", image)
//	logging.UserSuccess("Started %s", name)
//	logging.UserWarning("Failed to remove container %s: %v", name, err)
//	logging.UserError("Scenario failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators (colored with lipgloss):
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
