// Package style provides color helpers for console output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var colorEnabled = termenv.ColorProfile() != termenv.Ascii

// ColorBranchName colors a branch name for console output.
func ColorBranchName(branchName string) string {
	if !colorEnabled {
		return branchName
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Render(branchName)
}

// ColorTagName colors a backup tag name.
func ColorTagName(tagName string) string {
	if !colorEnabled {
		return tagName
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Render(tagName)
}

// ColorDim renders dimmed detail text such as short SHAs.
func ColorDim(text string) string {
	if !colorEnabled {
		return text
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(text)
}

// ColorEmphasis renders emphasized text such as stage headings.
func ColorEmphasis(text string) string {
	if !colorEnabled {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}

// ShortSHA abbreviates a commit SHA for display.
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
