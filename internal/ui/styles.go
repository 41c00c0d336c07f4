// Package ui renders the Hyacinth CLI output: the globals table, the live
// session view and the setup messages.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorPrimary   = lipgloss.Color("39")  // blue
	ColorSecondary = lipgloss.Color("205") // magenta
	ColorSuccess   = lipgloss.Color("82")
	ColorWarning   = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")
	ColorInfo      = lipgloss.Color("86")

	ColorText   = lipgloss.Color("252")
	ColorSubtle = lipgloss.Color("241")
	ColorMuted  = lipgloss.Color("238")

	// Bound globals and a configured window
	ColorActive   = ColorSuccess
	ColorInactive = ColorSubtle
)

var (
	TextStyle  = lipgloss.NewStyle().Foreground(ColorText)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// Config sections in `config show`
	SubheaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	// The window title in the session view
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorMuted).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	InfoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)

	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorSecondary)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	TableRowStyle = lipgloss.NewStyle().Foreground(ColorText)
)

// SpinnerDot is the frame set of the session spinner while the handshake runs
var SpinnerDot = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconWindow  = "▢"
	IconSetup   = "»"
)

var (
	activeIndicator   = lipgloss.NewStyle().Foreground(ColorActive).Render("●")
	inactiveIndicator = lipgloss.NewStyle().Foreground(ColorInactive).Render("○")

	controlKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
)

// FormatControl renders a key binding hint.
func FormatControl(key, desc string) string {
	return controlKeyStyle.Render(key) + " - " + TextStyle.Render(desc)
}

// FormatStatus prefixes a session state with a filled dot when the window is
// configured and a hollow one otherwise.
func FormatStatus(active bool, status string) string {
	if active {
		return activeIndicator + " " + status
	}
	return inactiveIndicator + " " + status
}

// FormatWarning renders a non-fatal problem, such as a missing optional global.
func FormatWarning(msg string) string {
	return WarningStyle.Render(IconWarning + " " + msg)
}

func FormatSetupHeader(title string) string {
	header := HeaderStyle.UnsetMarginBottom().Render(InfoStyle.Render(IconSetup) + " " + title)
	return header + "\n" + CreateSeparator(50, "─")
}

// FormatSetupResult renders the outcome of a setup step. message is optional.
func FormatSetupResult(success bool, step, message string) string {
	icon, style := SuccessStyle.Render(IconSuccess), SuccessStyle
	if !success {
		icon, style = ErrorStyle.Render(IconError), ErrorStyle
	}

	result := "   " + icon + " " + step
	if message != "" {
		result += " - " + style.Render(message)
	}
	return result
}

// CreateSeparator repeats char width times. Zero values fall back to a
// 50 column line.
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 50
	}
	if char == "" {
		char = "─"
	}
	return lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Render(strings.Repeat(char, width))
}
