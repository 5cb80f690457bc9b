package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/transcript"
)

// newSpinner creates a spinner with the dots animation.
func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{
			".   ",
			"..  ",
			"... ",
			"....",
		},
		FPS: time.Second / 5,
	}
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)
	return sp
}

// newTextInput creates the prompt input.
func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Describe a change to your game..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 80
	ti.Prompt = ""

	// Match the input area background.
	ti.TextStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(InputAreaBg)
	ti.PlaceholderStyle = lipgloss.NewStyle().
		Foreground(DimColor).
		Background(InputAreaBg)
	ti.Cursor.Style = lipgloss.NewStyle().
		Foreground(AccentColor).
		Background(InputAreaBg)

	return ti
}

// newGlamourRenderer creates a glamour renderer for markdown.
func newGlamourRenderer(width int) *glamour.TermRenderer {
	if width < 40 {
		width = 40
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// New creates the chat model and installs its callbacks on the agent.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	modelName := opts.ModelName
	if modelName == "" {
		modelName = "no model"
	}

	m := Model{
		textinput:  newTextInput(),
		spinner:    newSpinner(),
		renderer:   newGlamourRenderer(80),
		logs:       []logEntry{},
		historyIdx: -1,
		agent:      opts.Agent,
		project:    opts.Project,
		history:    opts.History,
		transcript: opts.Transcript,
		sessionID:  opts.SessionID,
		modelName:  modelName,
		save:       opts.Save,
		logger:     logger,
		out:        &outbox{},
		animSpring: harmonica.NewSpring(harmonica.FPS(int(time.Second/tickInterval)), 6.0, 0.2),
		animTarget: 1,
	}

	var cb core.Callback = m.out.push
	if m.transcript != nil && m.sessionID != "" {
		cb = m.transcript.Recorder(m.sessionID, cb, func(err error) {
			logger.Warn("transcript write failed", "err", err)
		})
	}
	m.agent.SetCallback(cb)
	m.agent.SetStreamCallback(m.out.chunk)

	return m
}

// record stores a line the user typed.
func (m Model) record(text string) {
	if m.transcript == nil || m.sessionID == "" {
		return
	}
	if err := m.transcript.Append(m.sessionID, transcript.KindUser, text); err != nil {
		m.logger.Warn("transcript write failed", "err", err)
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init initializes the Bubble Tea model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		tick(),
	)
}
