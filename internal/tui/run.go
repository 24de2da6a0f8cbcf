package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devshield/devshield/internal/types"
)

// Run opens the review UI over results and blocks until the user quits.
func Run(results []types.Result, opts Options) error {
	m := NewModel(results, opts)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running review UI: %w", err)
	}
	return nil
}
