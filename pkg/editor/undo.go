package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/retroengine/retroai/pkg/core"
)

// Errors returned by UndoStack when there is nothing to move.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultUndoLimit is the number of steps an UndoStack keeps by default.
const DefaultUndoLimit = 100

// UndoStack records executed commands for undo and redo. It implements
// core.CommandManager and is safe for concurrent use.
type UndoStack struct {
	mu       sync.Mutex
	undo     []core.Command
	redo     []core.Command
	limit    int
	onChange func()
}

// NewUndoStack creates a stack keeping at most limit steps. A limit of zero
// or less selects DefaultUndoLimit.
func NewUndoStack(limit int) *UndoStack {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &UndoStack{limit: limit}
}

// OnChange registers a function called after every execute, undo or redo.
func (s *UndoStack) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Execute runs cmd and pushes it on the undo stack. Any redo history is dropped.
func (s *UndoStack) Execute(cmd core.Command) error {
	if cmd == nil {
		return errors.New("nil command")
	}
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("execute %q: %w", cmd.Description(), err)
	}

	s.mu.Lock()
	s.undo = append(s.undo, cmd)
	if len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.redo = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// Undo reverts the most recent command and returns its description.
func (s *UndoStack) Undo() (string, error) {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return "", ErrNothingToUndo
	}
	cmd := s.undo[len(s.undo)-1]
	if err := cmd.Undo(); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("undo %q: %w", cmd.Description(), err)
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return cmd.Description(), nil
}

// Redo re-applies the most recently undone command and returns its description.
func (s *UndoStack) Redo() (string, error) {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return "", ErrNothingToRedo
	}
	cmd := s.redo[len(s.redo)-1]
	if err := cmd.Execute(); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("redo %q: %w", cmd.Description(), err)
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return cmd.Description(), nil
}

// CanUndo reports whether Undo has something to revert.
func (s *UndoStack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has something to re-apply.
func (s *UndoStack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// History returns the descriptions of undoable commands, oldest first.
func (s *UndoStack) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.undo))
	for i, c := range s.undo {
		out[i] = c.Description()
	}
	return out
}

var _ core.CommandManager = (*UndoStack)(nil)
