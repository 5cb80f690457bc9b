package tui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
	"github.com/retroengine/retroai/pkg/transcript"
)

// Log entry types.
const (
	entryUser      = "user"
	entryResponse  = "response"
	entryStreaming = "streaming"
	entryTool      = "tool"
	entryConfirm   = "confirm"
	entryError     = "error"
	entrySystem    = "system"
	entrySeparator = "separator"
)

// tickInterval is how often the agent is polled for finished turns.
const tickInterval = 50 * time.Millisecond

// logEntry represents a single line block in the chat view
type logEntry struct {
	Type    string
	Content string
}

// classify maps an agent callback line to an entry type.
func classify(message string, isError bool) string {
	switch {
	case strings.HasPrefix(message, "✓"):
		return entryTool
	case strings.HasPrefix(message, "✗"), isError:
		return entryError
	case strings.HasPrefix(message, "I want to perform the following:"):
		return entryConfirm
	default:
		return entryResponse
	}
}

// outbox collects agent output between ticks. The agent only calls back from
// Update, ConfirmAction and friends, all of which run on the UI goroutine, so
// no locking is needed. It is shared by pointer because Model is copied on
// every update.
type outbox struct {
	entries     []logEntry
	stream      string
	streamDirty bool
}

func (o *outbox) push(message string, isError bool) {
	e := logEntry{Type: classify(message, isError), Content: message}
	if e.Type == entryResponse {
		o.stream = ""
		o.streamDirty = false
	}
	o.entries = append(o.entries, e)
}

func (o *outbox) chunk(s string) {
	o.stream += s
	o.streamDirty = true
}

// Options wires the chat host to an agent and its project.
type Options struct {
	Agent   *core.Agent
	Project *editor.Project
	History *editor.UndoStack

	// Transcript, when set, records the conversation under SessionID.
	Transcript *transcript.Store
	SessionID  string

	ModelName string
	// Save persists the project; /save reports its error.
	Save   func() error
	Logger *slog.Logger
}

// Model is the Bubble Tea model for the chat host.
type Model struct {
	viewport     viewport.Model
	textinput    textinput.Model
	spinner      spinner.Model
	renderer     *glamour.TermRenderer
	logs         []logEntry
	width        int
	height       int
	ready        bool
	inputHistory []string
	historyIdx   int
	savedInput   string

	agent      *core.Agent
	project    *editor.Project
	history    *editor.UndoStack
	transcript *transcript.Store
	sessionID  string
	modelName  string
	save       func() error
	logger     *slog.Logger
	out        *outbox

	// Harmonica spring pulsing the status dot while a turn runs.
	animSpring harmonica.Spring
	animPos    float64
	animVel    float64
	animTarget float64
}

// tickMsg drives agent polling and the status animation
type tickMsg time.Time
