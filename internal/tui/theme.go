package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on light and dark backgrounds, so colors are adaptive.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted     lipgloss.TerminalColor = ac("240", "243")
	colorAccent    lipgloss.TerminalColor = ac("25", "75")
	colorDone      lipgloss.TerminalColor = ac("28", "114")
	colorError     lipgloss.TerminalColor = ac("160", "203")
	colorModalEdge lipgloss.TerminalColor = ac("232", "255")

	headerStyle = lipgloss.NewStyle().Bold(true)
	crumbStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	unsavedDot  = lipgloss.NewStyle().Foreground(colorError).Render("●")
	doneStyle   = lipgloss.NewStyle().Foreground(colorDone)
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorModalEdge).
			Padding(0, 1)
	modalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// applyColorProfile honours NO_COLOR and QUICKLISTS_TUI_COLOR=ascii|ansi|256|truecolor.
func applyColorProfile() {
	if os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("QUICKLISTS_TUI_COLOR"))) {
	case "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "ansi":
		lipgloss.SetColorProfile(termenv.ANSI)
	case "256":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}
