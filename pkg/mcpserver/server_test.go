package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
	"github.com/retroengine/retroai/pkg/editor/tools"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type panicTool struct{}

func (panicTool) Name() string               { return "explode" }
func (panicTool) Description() string        { return "Always panics" }
func (panicTool) Parameters() map[string]any { return map[string]any{"type": "object", "properties": map[string]any{}} }
func (panicTool) Execute(map[string]any) (core.ToolResult, error) {
	panic("boom")
}

type harness struct {
	project *editor.Project
	history *editor.UndoStack
	session *mcp.ClientSession
}

func connect(t *testing.T, extra []core.Tool, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		project: editor.NewProject("demo"),
		history: editor.NewUndoStack(0),
	}
	registry := core.NewRegistry(discard)
	tools.RegisterAll(registry, h.project, h.history)
	for _, tool := range extra {
		registry.Register(tool)
	}

	opts = append([]Option{WithLogger(discard), WithCommandManager(h.history)}, opts...)
	srv := New("retroai", "test", registry, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	go func() {
		_ = srv.Run(ctx, serverTransport)
	}()

	cli := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "1.0.0"}, nil)
	session, err := cli.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	h.session = session
	return h
}

func (h *harness) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := h.session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s) failed: %v", name, err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult, i int) string {
	t.Helper()
	if len(res.Content) <= i {
		t.Fatalf("result has %d content blocks, want more than %d", len(res.Content), i)
	}
	tc, ok := res.Content[i].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[i])
	}
	return tc.Text
}

func TestServer_ListTools(t *testing.T) {
	h := connect(t, nil)

	resp, err := h.session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(resp.Tools) != 39 {
		t.Errorf("listed %d tools, want 39", len(resp.Tools))
	}

	byName := map[string]*mcp.Tool{}
	for _, tool := range resp.Tools {
		byName[tool.Name] = tool
	}
	if !strings.HasSuffix(byName["create_scene"].Description, confirmSuffix) {
		t.Errorf("create_scene description lacks confirmation note: %q", byName["create_scene"].Description)
	}
	if strings.HasSuffix(byName["list_scenes"].Description, confirmSuffix) {
		t.Errorf("list_scenes should not carry the confirmation note")
	}
}

func TestServer_SkipConfirmable(t *testing.T) {
	h := connect(t, nil, SkipConfirmable())

	resp, err := h.session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	for _, tool := range resp.Tools {
		if tool.Name == "create_scene" || tool.Name == "delete_actor" {
			t.Errorf("confirmable tool %s was published", tool.Name)
		}
	}
	if len(resp.Tools) == 0 {
		t.Error("expected the read-only tools to remain")
	}
}

func TestServer_CallRecordsUndo(t *testing.T) {
	h := connect(t, nil)

	res := h.call(t, "create_scene", map[string]any{"id": "tavern", "name": "Tavern"})
	if res.IsError {
		t.Fatalf("create_scene failed: %s", text(t, res, 0))
	}
	if _, ok := h.project.Scene("tavern"); !ok {
		t.Fatal("scene not created")
	}
	if !h.history.CanUndo() {
		t.Fatal("expected the change on the undo stack")
	}

	res = h.call(t, "undo", map[string]any{})
	if res.IsError {
		t.Fatalf("undo failed: %s", text(t, res, 0))
	}
	if _, ok := h.project.Scene("tavern"); ok {
		t.Error("undo over MCP did not remove the scene")
	}
}

func TestServer_DataBlock(t *testing.T) {
	h := connect(t, nil)
	h.call(t, "create_scene", map[string]any{"id": "tavern", "name": "Tavern"})

	res := h.call(t, "list_scenes", map[string]any{})
	if res.IsError {
		t.Fatalf("list_scenes failed: %s", text(t, res, 0))
	}
	var data any
	if err := json.Unmarshal([]byte(text(t, res, 1)), &data); err != nil {
		t.Fatalf("data block is not JSON: %v", err)
	}
	if !strings.Contains(text(t, res, 1), "tavern") {
		t.Errorf("data block misses the scene: %s", text(t, res, 1))
	}
}

func TestServer_Failures(t *testing.T) {
	h := connect(t, []core.Tool{panicTool{}})

	tests := []struct {
		name   string
		tool   string
		args   map[string]any
		prefix string
	}{
		{"tool failure", "get_scene", map[string]any{"scene_id": "missing"}, "Scene not found"},
		{"schema violation", "get_scene", map[string]any{}, "Invalid arguments"},
		{"panic", "explode", map[string]any{}, "Exception: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.call(t, tt.tool, tt.args)
			if !res.IsError {
				t.Fatal("expected IsError")
			}
			if got := text(t, res, 0); !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("message = %q, want prefix %q", got, tt.prefix)
			}
		})
	}
	if h.history.CanUndo() {
		t.Error("failed calls must not record commands")
	}
}

func TestToCallResult_EmptyData(t *testing.T) {
	for _, data := range []any{nil, map[string]any{}, []string{}} {
		res := toCallResult(core.OKWithData("done", data))
		if len(res.Content) != 1 {
			t.Errorf("data %v produced %d blocks", data, len(res.Content))
		}
	}
}
