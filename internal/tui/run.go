package tui

import (
	"github.com/atharv2823/BaatCheet/internal/chat"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive chat screen and blocks until it exits.
func Run(store *chat.Store, dispatcher *chat.Dispatcher, cfg TUIConfig) error {
	p := tea.NewProgram(NewModel(store, dispatcher, cfg))
	_, err := p.Run()
	return err
}
