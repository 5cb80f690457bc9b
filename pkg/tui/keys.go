package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// handleKeyMsg processes keyboard input. A nil command with handled=false
// lets the key through to the text input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit, true
	case "ctrl+l":
		return m.handleClearScreen(), nil, true
	case "ctrl+y":
		return m.handleCopyLastResponse(), nil, true
	case "ctrl+u":
		m.textinput.SetValue("")
		m.historyIdx = -1
		return m, nil, true
	case "ctrl+z":
		return m.undo(), nil, true
	case "up":
		return m.handleHistoryUp(), nil, true
	case "down":
		return m.handleHistoryDown(), nil, true
	case "enter":
		return m.handleEnter(), nil, true
	case "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	default:
		return m, nil, false
	}
}

// handleClearScreen clears the visible log; the agent history is kept.
func (m Model) handleClearScreen() Model {
	m.logs = []logEntry{}
	m.updateViewportContent()
	return m
}

// handleCopyLastResponse copies the last agent response to the clipboard.
func (m Model) handleCopyLastResponse() Model {
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].Type == entryResponse {
			if err := clipboard.WriteAll(m.logs[i].Content); err != nil {
				return m.system("Copy failed: " + err.Error())
			}
			return m.system("Copied last response")
		}
	}
	return m
}

// handleHistoryUp navigates backwards through input history.
func (m Model) handleHistoryUp() Model {
	if len(m.inputHistory) == 0 {
		return m
	}
	if m.historyIdx == -1 {
		m.savedInput = m.textinput.Value()
		m.historyIdx = len(m.inputHistory) - 1
	} else if m.historyIdx > 0 {
		m.historyIdx--
	}
	m.textinput.SetValue(m.inputHistory[m.historyIdx])
	m.textinput.CursorEnd()
	return m
}

// handleHistoryDown navigates forwards through input history.
func (m Model) handleHistoryDown() Model {
	if m.historyIdx == -1 {
		return m
	}
	if m.historyIdx < len(m.inputHistory)-1 {
		m.historyIdx++
		m.textinput.SetValue(m.inputHistory[m.historyIdx])
	} else {
		m.historyIdx = -1
		m.textinput.SetValue(m.savedInput)
	}
	m.textinput.CursorEnd()
	return m
}

// handleEnter submits the input: a slash command, a confirmation answer or a
// new message for the agent.
func (m Model) handleEnter() Model {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m
	}

	m.inputHistory = append(m.inputHistory, input)
	m.historyIdx = -1
	m.savedInput = ""
	m.textinput.SetValue("")

	if strings.HasPrefix(input, "/") {
		return m.handleSlash(input)
	}

	if len(m.logs) > 0 {
		m.logs = append(m.logs, logEntry{Type: entrySeparator})
	}
	m.logs = append(m.logs, logEntry{Type: entryUser, Content: input})
	m.record(input)

	if m.agent.State() == core.StateWaitingForConfirmation {
		switch strings.ToLower(input) {
		case "y", "yes", "ok":
			m.agent.ConfirmAction()
		case "n", "no", "cancel":
			m.agent.CancelAction()
		default:
			return m.system("Type 'ok' to confirm or 'n' to cancel.")
		}
		return m.drain()
	}

	if m.project != nil {
		m.agent.UpdateContext(m.project.EditorContext())
	}
	m.agent.ProcessUserMessage(input)
	return m.drain()
}

// handleSlash runs a host command.
func (m Model) handleSlash(input string) Model {
	switch strings.Fields(input)[0] {
	case "/undo":
		return m.undo()
	case "/redo":
		return m.redo()
	case "/reset":
		m.agent.ResetError()
		return m.system("Agent reset")
	case "/new":
		m.agent.ClearHistory()
		return m.system("Conversation cleared")
	case "/clear":
		return m.handleClearScreen()
	case "/save":
		if m.save == nil {
			return m.system("Nothing to save to")
		}
		if err := m.save(); err != nil {
			return m.failure("Save failed: " + err.Error())
		}
		return m.system("Project saved")
	case "/history":
		if m.history == nil || len(m.history.History()) == 0 {
			return m.system("No changes yet")
		}
		return m.system("Changes:\n- " + strings.Join(m.history.History(), "\n- "))
	case "/help":
		return m.system(helpText)
	default:
		return m.failure(fmt.Sprintf("Unknown command %s (try /help)", input))
	}
}

const helpText = `Commands:
/undo, /redo    step through editor changes (ctrl+z undoes)
/reset          leave the error state
/new            forget the conversation
/save           write the project to disk
/history        list recorded changes
/clear          clear the screen`

func (m Model) undo() Model {
	if m.history == nil {
		return m
	}
	desc, err := m.history.Undo()
	if errors.Is(err, editor.ErrNothingToUndo) {
		return m.system("Nothing to undo")
	}
	if err != nil {
		return m.failure("Undo failed: " + err.Error())
	}
	if m.project != nil {
		m.project.RecordAction("Undo: " + desc)
	}
	return m.system("Undid: " + desc)
}

func (m Model) redo() Model {
	if m.history == nil {
		return m
	}
	desc, err := m.history.Redo()
	if errors.Is(err, editor.ErrNothingToRedo) {
		return m.system("Nothing to redo")
	}
	if err != nil {
		return m.failure("Redo failed: " + err.Error())
	}
	if m.project != nil {
		m.project.RecordAction("Redo: " + desc)
	}
	return m.system("Redid: " + desc)
}

func (m Model) system(msg string) Model {
	m.logs = append(m.logs, logEntry{Type: entrySystem, Content: msg})
	m.updateViewportContent()
	return m
}

func (m Model) failure(msg string) Model {
	m.logs = append(m.logs, logEntry{Type: entryError, Content: msg})
	m.updateViewportContent()
	return m
}
