// Package tui provides terminal user interface components for compat-runner.
//
// # Case Picker
//
// The picker lists the compatibility cases eligible for a version pair,
// grouped by the minimum server version they apply to, and returns the
// ones to run:
//
//	result, err := tui.RunPicker(eligible, "Marqo 2.5 -> 2.6")
//	switch result.Action {
//	case tui.ActionRun:
//	    // Run a scenario restricted to result.Cases
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// # Picker Features
//
//   - Cases grouped under "since <version>" headers, oldest first
//   - Keyboard navigation (j/k or arrows), headers auto-skipped
//   - space toggles a case, a toggles all, enter runs the checked cases
//     (or the one under the cursor when none are checked), q quits
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
