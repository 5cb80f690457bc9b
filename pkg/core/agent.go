package core

import (
	"context"
	"log/slog"

	"github.com/retroengine/retroai/pkg/llm"
)

// Messages reported through the callback when a request cannot start.
const (
	msgNotReady        = "Agent not ready. Check provider configuration."
	msgBusy            = "Already processing a request."
	msgAwaitingConfirm = "Waiting for confirmation."
	msgErrorState      = "Agent is in error state. Reset before sending a new message."
	msgCancelled       = "Action cancelled."
)

const streamBuffer = 256

// Agent turns user messages into provider requests and tool executions.
//
// An Agent is driven from a single goroutine (the UI loop): every method
// except the in-flight provider call runs there. Each turn starts one worker
// goroutine whose result is collected by Update or Wait.
type Agent struct {
	registry *Registry
	commands CommandManager
	logger   *slog.Logger

	initialized bool
	state       State
	lastError   string

	provider       llm.Provider
	callback       Callback
	streamCallback StreamCallback
	config         Config
	context        EditorContext

	history []llm.Message
	pending []llm.ToolCall

	inflight chan turnResult
	chunks   chan string
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithCommandManager sets the receiver of undo commands.
func WithCommandManager(m CommandManager) Option {
	return func(a *Agent) { a.commands = m }
}

// NewAgent creates an agent that dispatches to the tools in registry.
func NewAgent(registry *Registry, opts ...Option) *Agent {
	a := &Agent{
		registry: registry,
		logger:   slog.Default(),
		config:   DefaultConfig(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = NewRegistry(a.logger)
	}
	return a
}

// Initialize marks the agent ready for use. Calling it twice is a no-op.
func (a *Agent) Initialize() bool {
	if a.initialized {
		return true
	}
	a.initialized = true
	a.state = StateIdle
	a.logger.Info("agent initialized", "tools", a.registry.Len())
	return true
}

// Shutdown drops history, the pending batch, the provider and the callback.
// A call still in flight is abandoned; its result is never read.
func (a *Agent) Shutdown() {
	if !a.initialized {
		return
	}
	a.history = nil
	a.pending = nil
	a.provider = nil
	a.callback = nil
	a.streamCallback = nil
	a.inflight = nil
	a.chunks = nil
	a.state = StateIdle
	a.lastError = ""
	a.initialized = false
	a.logger.Info("agent shut down")
}

// Registry returns the tool registry the agent dispatches to.
func (a *Agent) Registry() *Registry { return a.registry }

// SetProvider replaces the active provider. A call already in flight keeps
// using the provider it started with.
func (a *Agent) SetProvider(p llm.Provider) {
	a.provider = p
	if p == nil {
		a.logger.Info("provider cleared")
		return
	}
	a.logger.Info("provider set", "provider", p.Name(), "available", p.IsAvailable())
}

// Provider returns the active provider, or nil.
func (a *Agent) Provider() llm.Provider { return a.provider }

// SetCallback sets the receiver of user-visible output.
func (a *Agent) SetCallback(cb Callback) { a.callback = cb }

// SetStreamCallback sets the receiver of partial text when streaming is on.
func (a *Agent) SetStreamCallback(cb StreamCallback) { a.streamCallback = cb }

// SetConfig replaces the configuration used by subsequent turns.
func (a *Agent) SetConfig(cfg Config) { a.config = cfg }

// Config returns the current configuration.
func (a *Agent) Config() Config { return a.config }

// UpdateContext replaces the editor context used in the system prompt.
func (a *Agent) UpdateContext(ctx EditorContext) { a.context = ctx }

// Context returns the editor context.
func (a *Agent) Context() EditorContext { return a.context }

// State returns the current lifecycle state.
func (a *Agent) State() State { return a.state }

// LastError returns the message of the most recent failure.
func (a *Agent) LastError() string { return a.lastError }

// History returns a copy of the conversation.
func (a *Agent) History() []llm.Message {
	return append([]llm.Message(nil), a.history...)
}

// ClearHistory drops the conversation.
func (a *Agent) ClearHistory() { a.history = nil }

// PendingToolCalls returns a copy of the batch awaiting confirmation.
func (a *Agent) PendingToolCalls() []llm.ToolCall {
	return append([]llm.ToolCall(nil), a.pending...)
}

// IsReady reports whether a message can be sent: the agent is initialized and
// has an available provider.
func (a *Agent) IsReady() bool {
	return a.initialized && a.provider != nil && a.provider.IsAvailable()
}

// ResetError returns the agent from StateError to StateIdle.
func (a *Agent) ResetError() {
	if a.state != StateError {
		return
	}
	a.state = StateIdle
	a.lastError = ""
}

// ProcessUserMessage starts a turn. It returns false, after reporting why,
// when the agent is not ready or not idle.
func (a *Agent) ProcessUserMessage(text string) bool {
	if !a.IsReady() {
		a.reject(msgNotReady)
		return false
	}
	switch a.state {
	case StateProcessing:
		a.reject(msgBusy)
		return false
	case StateWaitingForConfirmation:
		a.reject(msgAwaitingConfirm)
		return false
	case StateError:
		if a.config.ErrorPolicy != ErrorActsAsIdle {
			a.reject(msgErrorState)
			return false
		}
		a.lastError = ""
	}

	a.history = append(a.history, llm.UserMessage(text))
	a.dispatch()
	return true
}

// ConfirmAction runs the pending batch. It does nothing unless the agent is
// waiting for confirmation.
func (a *Agent) ConfirmAction() {
	if a.state != StateWaitingForConfirmation {
		return
	}
	calls := a.pending
	a.pending = nil
	a.executeToolCalls(calls)
	a.state = StateIdle
}

// CancelAction discards the pending batch without running it.
func (a *Agent) CancelAction() {
	if a.state != StateWaitingForConfirmation {
		return
	}
	a.pending = nil
	a.state = StateIdle
	a.notify(msgCancelled, false)
}

// Update delivers queued stream chunks and, if the in-flight call has
// finished, processes its response. It never blocks.
func (a *Agent) Update() {
	a.flushChunks()
	if a.state != StateProcessing || a.inflight == nil {
		return
	}
	select {
	case res := <-a.inflight:
		a.finish(res)
	default:
	}
}

// Wait blocks until the in-flight call finishes and processes it like
// Update. It returns immediately when nothing is in flight.
func (a *Agent) Wait(ctx context.Context) error {
	for a.state == StateProcessing && a.inflight != nil {
		select {
		case res := <-a.inflight:
			a.finish(res)
		case chunk := <-a.chunks:
			a.deliverChunk(chunk)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (a *Agent) reject(msg string) {
	a.logger.Debug("message rejected", "reason", msg, "state", a.state)
	a.lastError = msg
	a.notify(msg, true)
}

func (a *Agent) notify(msg string, isError bool) {
	if a.callback != nil {
		a.callback(msg, isError)
	}
}

func (a *Agent) flushChunks() {
	if a.chunks == nil {
		return
	}
	for {
		select {
		case chunk := <-a.chunks:
			a.deliverChunk(chunk)
		default:
			return
		}
	}
}

func (a *Agent) deliverChunk(chunk string) {
	if a.streamCallback != nil {
		a.streamCallback(chunk)
	}
}
