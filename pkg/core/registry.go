package core

import (
	"log/slog"
	"sync"

	"github.com/retroengine/retroai/pkg/llm"
)

// Registry holds the tools available to the agent. It is created by the host
// and injected into the Agent; there is no global instance.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []Tool
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Nil tools are ignored; when a name is already taken
// the first registration wins.
func (r *Registry) Register(tool Tool) {
	if tool == nil {
		r.logger.Warn("ignoring nil tool registration")
		return
	}
	name := tool.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool already registered", "tool", name)
		return
	}
	r.tools[name] = tool
	r.order = append(r.order, tool)
	r.logger.Debug("registered tool", "tool", name, "category", CategoryOf(tool))
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Tool(nil), r.order...)
}

// ByCategory returns the tools of one category in registration order.
func (r *Registry) ByCategory(category string) []Tool {
	var out []Tool
	for _, t := range r.All() {
		if CategoryOf(t) == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.All() {
		c := CategoryOf(t)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Definitions builds the tool catalog sent with each request. The slice is
// rebuilt on every call so registrations are visible on the next turn.
func (r *Registry) Definitions() []llm.ToolDefinition {
	tools := r.All()
	defs := make([]llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Clear removes every tool.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = make(map[string]Tool)
	r.order = nil
}
