// Package wizard holds the interactive terminal screens.
package wizard

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

// ErrCancelled is returned when the user quits a screen without confirming.
var ErrCancelled = errors.New("cancelled")

// PickTables runs the table selector full screen and returns the confirmed tables.
func PickTables(tables []*schema.Table, status map[string]snapshot.Status) ([]*schema.Table, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	m := NewTableSelectModel(tables, status)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running table selection: %w", err)
	}

	tsm := finalModel.(TableSelectModel)
	if tsm.Cancelled() {
		return nil, ErrCancelled
	}
	result := tsm.Result()
	if result == nil {
		return nil, fmt.Errorf("no tables selected")
	}
	return result.Selected, nil
}
