package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with status glyphs.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	// Stdout and Stderr are the destinations for user output.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	infoGlyph    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("ℹ")
	successGlyph = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	warningGlyph = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("⚠")
	errorGlyph   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
)

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, infoGlyph+" "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, successGlyph+" "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, warningGlyph+" "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, errorGlyph+" "+format+"\n", args...)
}
