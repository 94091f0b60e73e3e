package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive UI and blocks until the user quits.
func Run(s Stores, opts ...tea.ProgramOption) error {
	applyColorProfile()
	m := newAppModel(s)
	defer m.feed.close()

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	m.feed.attach(p.Send)
	_, err := p.Run()
	return err
}
