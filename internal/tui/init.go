package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	opts.Logger.Info().Str("endpoint", m.client.Endpoint()).Msg("starting tui")

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
