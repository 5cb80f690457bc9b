// Package llm defines the provider-neutral chat model used by the agent and
// the backends that translate it to each service's wire format.
package llm

import (
	"context"
	"fmt"
)

// Role identifies the author of a chat message.
type Role int

const (
	// RoleSystem carries instructions for the model.
	RoleSystem Role = iota
	// RoleUser carries text typed by the person using the editor.
	RoleUser
	// RoleAssistant carries text produced by the model.
	RoleAssistant
	// RoleTool carries the serialized result of a tool call.
	RoleTool
)

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleTool:
		return "tool"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Message is one entry of a conversation. Messages are values and are never
// modified after they are appended to a history.
type Message struct {
	Role    Role
	Content string
	// ToolCallID is set only on RoleTool messages and names the call answered.
	ToolCallID string
}

// SystemMessage returns a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResultMessage returns a tool-role message answering the call with the given id.
func ToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolCall is a request from the model to invoke a named tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDefinition advertises a tool to the model. Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Config holds the per-request generation settings.
type Config struct {
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Stream      bool    `mapstructure:"stream" yaml:"stream"`
}

// DefaultConfig returns the settings used when the host configures nothing.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Response is the normalized result of one chat request. Failures are
// reported with Success=false and a readable Error, never with a Go error.
type Response struct {
	Content    string
	ToolCalls  []ToolCall
	TokensUsed int
	Success    bool
	Error      string
	// Notice carries a non-fatal warning the host should surface, such as a
	// model substitution under ModelWarn.
	Notice string
}

// HasToolCalls reports whether the model asked for any tool invocations.
func (r Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// StreamCallback receives incremental text while a streaming request runs.
type StreamCallback func(chunk string)

// Provider is a chat backend. Chat blocks on network I/O and must be safe to
// call from a goroutine other than the one that configured the provider.
type Provider interface {
	// Name returns the short provider identifier ("openai", "anthropic", ...).
	Name() string
	// IsAvailable reports whether the provider has the credentials it needs.
	IsAvailable() bool
	// SetAPIKey replaces the credential used for subsequent requests.
	SetAPIKey(key string)
	// Chat sends the conversation and tool catalog and returns the reply.
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition, cfg Config) Response
	// ChatStream is Chat with incremental delivery. Providers without
	// streaming support may never invoke the callback.
	ChatStream(ctx context.Context, messages []Message, tools []ToolDefinition, cb StreamCallback, cfg Config) Response
	// AvailableModels lists the models this provider offers.
	AvailableModels() []string
}

func failure(format string, args ...any) Response {
	return Response{Success: false, Error: fmt.Sprintf(format, args...)}
}
