// Package tui is the terminal chat host for the editor agent. It polls the
// agent on a timer, renders its output and answers confirmation prompts.
//
// File organization:
// - app.go: Entry point (Run function)
// - model.go: Model struct, options and the agent outbox
// - init.go: Model construction
// - update.go: Event handling and agent polling
// - view.go: Rendering
// - keys.go: Keyboard input and slash commands
// - styles.go: Visual styling
// - highlight.go: JSON highlighting for tool output
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat host and blocks until the user quits.
func Run(opts Options) error {
	prog := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	return err
}
