// Package core provides the agent orchestrator, the tool contract and the tool
// registry that together let a language model drive the level editor.
package core

import "fmt"

// Tool represents an editor capability the model can invoke.
// Each tool has a name, description, parameter schema and execution logic.
// Tools are synchronous and run on the caller's goroutine.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string
	// Description returns a human-readable description of what this tool does.
	Description() string
	// Parameters returns the JSON Schema object describing the arguments.
	Parameters() map[string]any
	// Execute runs the tool. Expected failures (missing entity, bad value) are
	// reported through ToolResult; the error return is reserved for faults.
	Execute(args map[string]any) (ToolResult, error)
}

// Confirmable is implemented by tools that must be approved by the user
// before running. Tools that do not implement it never require confirmation.
type Confirmable interface {
	RequiresConfirmation() bool
}

// Categorized is implemented by tools that belong to a named group.
type Categorized interface {
	Category() string
}

// DefaultCategory is the category of tools that do not implement Categorized.
const DefaultCategory = "general"

// RequiresConfirmation reports whether t asks for user approval.
func RequiresConfirmation(t Tool) bool {
	if c, ok := t.(Confirmable); ok {
		return c.RequiresConfirmation()
	}
	return false
}

// CategoryOf returns the category of t, or DefaultCategory.
func CategoryOf(t Tool) string {
	if c, ok := t.(Categorized); ok && c.Category() != "" {
		return c.Category()
	}
	return DefaultCategory
}

// Command is a reversible editor change produced by a tool.
type Command interface {
	// Execute applies the change. Applying an already applied change is a no-op.
	Execute() error
	// Undo reverts the change.
	Undo() error
	// Description is a short human-readable summary for undo menus.
	Description() string
}

// CommandManager receives the commands produced by successful tool calls.
// The agent hands a command over and never touches it again.
type CommandManager interface {
	Execute(cmd Command) error
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	Success bool
	Message string
	// Data is optional structured output serialized into the tool message.
	Data any
	// Command is the optional undo command for the change just made.
	Command Command
}

// OK returns a successful result.
func OK(message string) ToolResult {
	return ToolResult{Success: true, Message: message}
}

// OKWithData returns a successful result carrying structured data.
func OKWithData(message string, data any) ToolResult {
	return ToolResult{Success: true, Message: message, Data: data}
}

// Failure returns an unsuccessful result.
func Failure(message string) ToolResult {
	return ToolResult{Success: false, Message: message}
}

// Failuref returns an unsuccessful result with a formatted message.
func Failuref(format string, args ...any) ToolResult {
	return Failure(fmt.Sprintf(format, args...))
}

// WithCommand attaches an undo command to a result.
func (r ToolResult) WithCommand(cmd Command) ToolResult {
	r.Command = cmd
	return r
}

// Callback receives every user-visible line the agent produces. isError marks
// failures and warnings.
type Callback func(message string, isError bool)

// StreamCallback receives partial response text while a streaming turn runs.
type StreamCallback func(chunk string)

// State is the orchestrator's position in its turn lifecycle.
type State int

const (
	// StateIdle accepts a new user message.
	StateIdle State = iota
	// StateProcessing has exactly one provider call in flight.
	StateProcessing
	// StateWaitingForConfirmation holds a non-empty batch of tool calls.
	StateWaitingForConfirmation
	// StateError follows a failed provider call.
	StateError
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateProcessing:
		return "Processing"
	case StateWaitingForConfirmation:
		return "WaitingForConfirmation"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
