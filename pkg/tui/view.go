package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/retroengine/retroai/pkg/core"
)

// View renders the entire TUI to a string.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInputArea())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// updateViewportContent re-renders the log. It keeps the scroll position if
// the user has scrolled up.
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	var content strings.Builder
	for _, entry := range m.logs {
		content.WriteString(m.formatLogEntry(entry))
		content.WriteString("\n")
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(content.String())
	if atBottom || m.agent.State() == core.StateProcessing {
		m.viewport.GotoBottom()
	}
}

// formatLogEntry formats a single log entry for display.
func (m *Model) formatLogEntry(entry logEntry) string {
	contentWidth := m.width - 6
	if contentWidth < 40 {
		contentWidth = 40
	}

	switch entry.Type {
	case entryUser:
		return UserMessageStyle.Width(contentWidth).Render(entry.Content)

	case entryTool:
		// execute_command appends the tool's JSON output below the summary line.
		head, rest, found := strings.Cut(entry.Content, "\n")
		if found {
			if hl, ok := HighlightJSON(m.renderer, rest); ok {
				return ToolStyle.Render(head) + "\n" + hl
			}
		}
		return ToolStyle.Render(entry.Content)

	case entryConfirm:
		return ConfirmStyle.Render(entry.Content + "\n(type 'ok' to confirm, 'n' to cancel)")

	case entryStreaming:
		return AgentMessageStyle.Render(entry.Content)

	case entryResponse:
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(entry.Content); err == nil {
				return strings.TrimSpace(rendered)
			}
		}
		return AgentMessageStyle.Render(entry.Content)

	case entryError:
		return ErrorStyle.Render(entry.Content)

	case entrySystem:
		return SystemStyle.Render(entry.Content)

	case entrySeparator:
		return ""

	default:
		return entry.Content
	}
}

// renderStatus renders the agent state next to the pulsing dot.
func (m Model) renderStatus() string {
	switch m.agent.State() {
	case core.StateProcessing:
		dot := StatusDimStyle.Render(statusDot)
		if m.animPos > 0.5 {
			dot = StatusActiveStyle.Render(statusDot)
		}
		return dot + " " + StatusActiveStyle.Render("thinking"+m.spinner.View())
	case core.StateWaitingForConfirmation:
		return StatusWarnStyle.Render(statusDot + " waiting for confirmation")
	case core.StateError:
		return StatusErrorStyle.Render(statusDot + " error, /reset to continue")
	default:
		return StatusDimStyle.Render(statusDot + " ready")
	}
}

// renderInputArea renders the input line.
func (m Model) renderInputArea() string {
	return InputAreaStyle.Width(m.width - 3).Render(m.textinput.View())
}

// renderFooter renders status and model on the left and shortcuts on the right.
func (m Model) renderFooter() string {
	left := m.renderStatus() + "  " + FooterAppNameStyle.Render("retroai") + FooterModelStyle.Render(m.modelName)

	parts := []string{
		ShortcutKeyStyle.Render("ctrl+z") + ShortcutDescStyle.Render(" undo"),
		ShortcutKeyStyle.Render("ctrl+y") + ShortcutDescStyle.Render(" copy"),
		ShortcutKeyStyle.Render("/help") + ShortcutDescStyle.Render(" commands"),
	}
	right := strings.Join(parts, "    ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return FooterStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
