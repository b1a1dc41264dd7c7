// Package output prints styled terminal messages for the CLI.
//
// Callers report what happened; styling (color, prefixes, verbosity
// gating) is decided here so every command looks the same.
package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
)

// SetVerbose enables verbose output. Wired to the --verbose flag.
func SetVerbose(v bool) {
	verboseMode = v
}

// Success prints a completed-operation message in green.
func Success(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

// Error prints a failure that needs user attention in red.
func Error(msg string) {
	fmt.Println(errorStyle.Render("✘ " + msg))
}

// Warn prints a non-fatal notice in yellow. Used when one input in a batch
// fails but the run continues.
func Warn(msg string) {
	fmt.Println(warnStyle.Render("⚠ " + msg))
}

// Info prints a status update in cyan.
func Info(msg string) {
	fmt.Println(infoStyle.Render("· " + msg))
}

// Step prints an indented sub-item in gray.
func Step(msg string) {
	fmt.Println(stepStyle.Render("   " + msg))
}

// Verbose prints a debug message, only when verbose mode is on.
func Verbose(msg string) {
	if verboseMode {
		fmt.Println(stepStyle.Render("» " + msg))
	}
}
