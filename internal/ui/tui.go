// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI program
func Run(control *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(control), tea.WithAltScreen())
	return p, nil
}
