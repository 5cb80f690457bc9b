package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/retroengine/retroai/pkg/core"
)

// Update handles all messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		updated, cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return updated, cmd
		}
		m = updated

	case tea.WindowSizeMsg:
		m = m.handleWindowResize(msg)

	case tickMsg:
		m.agent.Update()
		m = m.drain()
		m = m.animate()
		cmds = append(cmds, tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// drain moves collected agent output into the log.
func (m Model) drain() Model {
	o := m.out
	if len(o.entries) == 0 && !o.streamDirty && !m.danglingStream() {
		return m
	}

	if o.streamDirty && o.stream != "" {
		if m.lastIs(entryStreaming) {
			m.logs[len(m.logs)-1].Content = o.stream
		} else {
			m.logs = append(m.logs, logEntry{Type: entryStreaming, Content: o.stream})
		}
	}
	o.streamDirty = false

	for _, e := range o.entries {
		if e.Type == entryResponse && m.lastIs(entryStreaming) {
			m.logs[len(m.logs)-1] = e
			continue
		}
		m.logs = append(m.logs, e)
	}
	o.entries = nil

	// A turn that streamed text but ended without a final message keeps it.
	if m.danglingStream() {
		m.logs[len(m.logs)-1].Type = entryResponse
		o.stream = ""
	}

	m.updateViewportContent()
	return m
}

func (m Model) danglingStream() bool {
	return m.lastIs(entryStreaming) && m.agent.State() != core.StateProcessing
}

func (m Model) lastIs(kind string) bool {
	return len(m.logs) > 0 && m.logs[len(m.logs)-1].Type == kind
}

// animate advances the status dot spring, bouncing between 0 and 1.
func (m Model) animate() Model {
	if m.agent.State() != core.StateProcessing {
		m.animPos, m.animVel, m.animTarget = 0, 0, 1
		return m
	}
	m.animPos, m.animVel = m.animSpring.Update(m.animPos, m.animVel, m.animTarget)
	if math.Abs(m.animPos-m.animTarget) < 0.05 {
		m.animTarget = 1 - m.animTarget
	}
	return m
}

// handleWindowResize adjusts the layout when the terminal is resized.
func (m Model) handleWindowResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	inputHeight := 1
	footerHeight := 1
	margins := 3

	viewportHeight := m.height - inputHeight - footerHeight - margins
	if viewportHeight < 5 {
		viewportHeight = 5
	}

	if !m.ready {
		m.viewport = viewport.New(m.width-2, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width - 2
		m.viewport.Height = viewportHeight
	}

	badgeWidth := lipgloss.Width(FooterModelStyle.Render(m.modelName))
	m.textinput.Width = m.width - badgeWidth - 10

	if r := newGlamourRenderer(m.width - 6); r != nil {
		m.renderer = r
	}
	m.updateViewportContent()
	return m
}
