package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"courier/internal/engine"
)

func handleConfirmInput(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirmMode = false
		return m, sendCommand(m, engine.CommandClearMessages, 0)
	default:
		m.confirmMode = false
		return m, nil
	}
}
