package core

import (
	"fmt"
	"strings"

	"github.com/retroengine/retroai/pkg/llm"
)

// ErrorPolicy decides whether a new turn may start while the agent is in
// StateError.
type ErrorPolicy int

const (
	// ErrorRequiresReset rejects new messages until ResetError is called.
	ErrorRequiresReset ErrorPolicy = iota
	// ErrorActsAsIdle lets a new message start a turn directly from StateError.
	ErrorActsAsIdle
)

// String returns the configuration name of the policy.
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorRequiresReset:
		return "reset"
	case ErrorActsAsIdle:
		return "idle"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParseErrorPolicy converts a configuration value. Empty selects ErrorRequiresReset.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset", "requires_reset":
		return ErrorRequiresReset, nil
	case "idle", "acts_as_idle":
		return ErrorActsAsIdle, nil
	default:
		return ErrorRequiresReset, fmt.Errorf("unknown error policy %q (want reset or idle)", s)
	}
}

// Config tunes the agent.
type Config struct {
	// SystemPrompt is the template sent as the first message of every
	// request. Empty selects DefaultSystemPrompt.
	SystemPrompt string
	// MaxToolCalls caps the calls executed from one response. Zero disables the cap.
	MaxToolCalls int
	// RequireConfirmation gates batches containing a confirmable tool.
	RequireConfirmation bool
	// StreamResponses makes the worker use ChatStream.
	StreamResponses bool
	ErrorPolicy     ErrorPolicy
	LLM             llm.Config
}

// DefaultConfig returns the configuration used until SetConfig is called.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:        DefaultSystemPrompt(),
		MaxToolCalls:        10,
		RequireConfirmation: true,
		ErrorPolicy:         ErrorRequiresReset,
		LLM:                 llm.DefaultConfig(),
	}
}

// EditorContext is the editor state substituted into the system prompt.
type EditorContext struct {
	CurrentRoom   string
	CurrentLevel  string
	SelectedActor string
	RecentActions []string
	Additional    map[string]any
}
