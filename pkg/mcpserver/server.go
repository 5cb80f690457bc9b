// Package mcpserver exposes the editor tool registry to external Model Context
// Protocol clients, so other assistants can drive the same tools the built-in
// agent uses.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/retroengine/retroai/pkg/core"
)

// confirmSuffix marks tools the built-in agent would ask about first.
const confirmSuffix = " (changes the project; ask the user before calling)"

// Server serves a core.Registry over MCP.
type Server struct {
	registry       *core.Registry
	commands       core.CommandManager
	logger         *slog.Logger
	skipConfirming bool

	// Tools assume a single caller; MCP handlers may run concurrently.
	mu     sync.Mutex
	server *mcp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCommandManager records the undo commands of successful calls.
func WithCommandManager(m core.CommandManager) Option {
	return func(s *Server) { s.commands = m }
}

// SkipConfirmable leaves out tools that require confirmation.
func SkipConfirmable() Option {
	return func(s *Server) { s.skipConfirming = true }
}

// New creates a server named name that publishes every tool in registry.
func New(name, version string, registry *core.Registry, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves on transport until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// RunStdio serves on stdin/stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	count := 0
	for _, tool := range s.registry.All() {
		confirm := core.RequiresConfirmation(tool)
		if confirm && s.skipConfirming {
			continue
		}
		desc := tool.Description()
		if confirm {
			desc += confirmSuffix
		}
		s.server.AddTool(&mcp.Tool{
			Name:        tool.Name(),
			Description: desc,
			InputSchema: tool.Parameters(),
		}, s.handler(tool))
		count++
	}
	s.logger.Info("mcp tools registered", "count", count)
}

// handler adapts tool to an MCP tool handler. Tool failures are reported
// in-band with IsError set; only malformed requests become protocol errors.
func (s *Server) handler(tool core.Tool) mcp.ToolHandler {
	return func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments for %s: %w", tool.Name(), err)
			}
			if args == nil {
				args = map[string]any{}
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		result := s.call(tool, args)
		s.logger.Debug("mcp tool call", "tool", tool.Name(), "success", result.Success)
		return toCallResult(result), nil
	}
}

// call validates and runs tool, then hands its command to the manager.
func (s *Server) call(tool core.Tool, args map[string]any) (result core.ToolResult) {
	if err := core.ValidateArguments(tool.Parameters(), args); err != nil {
		return core.Failuref("Invalid arguments: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool panicked", "tool", tool.Name(), "panic", r)
			result = core.Failuref("Exception: %v", r)
		}
	}()

	res, err := tool.Execute(args)
	if err != nil {
		s.logger.Warn("tool fault", "tool", tool.Name(), "err", err)
		return core.Failure("Exception: " + err.Error())
	}
	if res.Success && res.Command != nil && s.commands != nil {
		if err := s.commands.Execute(res.Command); err != nil {
			s.logger.Warn("command rejected", "tool", tool.Name(), "err", err)
		}
	}
	return res
}

// toCallResult renders the message as the first text block and any
// structured data as a second, JSON encoded.
func toCallResult(r core.ToolResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{
		IsError: !r.Success,
		Content: []mcp.Content{
			&mcp.TextContent{Text: r.Message},
		},
	}
	if r.Data == nil {
		return out
	}
	data, err := json.Marshal(r.Data)
	if err != nil {
		return out
	}
	switch string(data) {
	case "null", "{}", "[]":
	default:
		out.Content = append(out.Content, &mcp.TextContent{Text: string(data)})
	}
	return out
}
