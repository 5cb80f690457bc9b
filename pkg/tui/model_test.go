package tui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
	"github.com/retroengine/retroai/pkg/editor/tools"
	"github.com/retroengine/retroai/pkg/llm"
	"github.com/retroengine/retroai/pkg/transcript"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// scriptedProvider replies with the queued responses in order.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []llm.Response
	seen      [][]llm.Message
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) IsAvailable() bool         { return true }
func (p *scriptedProvider) SetAPIKey(string)          {}
func (p *scriptedProvider) AvailableModels() []string { return []string{"scripted-1"} }

func (p *scriptedProvider) Chat(_ context.Context, messages []llm.Message, _ []llm.ToolDefinition, _ llm.Config) llm.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, messages)
	if len(p.responses) == 0 {
		return llm.Response{Success: false, Error: "no scripted response"}
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r
}

func (p *scriptedProvider) ChatStream(ctx context.Context, messages []llm.Message, defs []llm.ToolDefinition, _ llm.StreamCallback, cfg llm.Config) llm.Response {
	return p.Chat(ctx, messages, defs, cfg)
}

type fixture struct {
	model    Model
	project  *editor.Project
	history  *editor.UndoStack
	provider *scriptedProvider
}

func newFixture(t *testing.T, store *transcript.Store, sessionID string, responses ...llm.Response) *fixture {
	t.Helper()
	f := &fixture{
		project:  editor.NewProject("demo"),
		history:  editor.NewUndoStack(0),
		provider: &scriptedProvider{responses: responses},
	}
	registry := core.NewRegistry(discard)
	tools.RegisterAll(registry, f.project, f.history)

	agent := core.NewAgent(registry, core.WithLogger(discard), core.WithCommandManager(f.history))
	agent.Initialize()
	agent.SetProvider(f.provider)

	f.model = New(Options{
		Agent:      agent,
		Project:    f.project,
		History:    f.history,
		Transcript: store,
		SessionID:  sessionID,
		ModelName:  "scripted-1",
		Logger:     discard,
	})
	f.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return f
}

func (f *fixture) send(msg tea.Msg) {
	updated, _ := f.model.Update(msg)
	f.model = updated.(Model)
}

func (f *fixture) submit(text string) {
	f.model.textinput.SetValue(text)
	f.send(tea.KeyMsg{Type: tea.KeyEnter})
}

// settle ticks until the in-flight turn is processed.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.model.agent.State() == core.StateProcessing {
		if time.Now().After(deadline) {
			t.Fatal("turn did not finish")
		}
		f.send(tickMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
}

func (f *fixture) logs(kind string) []string {
	var out []string
	for _, e := range f.model.logs {
		if e.Type == kind {
			out = append(out, e.Content)
		}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg     string
		isError bool
		want    string
	}{
		{"✓ create_scene: Scene created", false, entryTool},
		{"✗ get_scene: Scene not found: x", true, entryError},
		{"I want to perform the following:\n- create_scene\n", false, entryConfirm},
		{"Error: HTTP 500", true, entryError},
		{"Here is your tavern.", false, entryResponse},
	}
	for _, tt := range tests {
		if got := classify(tt.msg, tt.isError); got != tt.want {
			t.Errorf("classify(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

func TestModel_MessageRoundTrip(t *testing.T) {
	f := newFixture(t, nil, "", llm.Response{Success: true, Content: "Hello from the editor"})
	f.project.Select(editor.Selection{Scene: "tavern"})

	f.submit("hi")
	if f.model.agent.State() != core.StateProcessing {
		t.Fatalf("state = %s, want Processing", f.model.agent.State())
	}
	if got := f.model.agent.Context().CurrentRoom; got != "tavern" {
		t.Errorf("context not refreshed before the message: room = %q", got)
	}

	f.settle(t)

	if users := f.logs(entryUser); len(users) != 1 || users[0] != "hi" {
		t.Errorf("user lines = %v", users)
	}
	if resp := f.logs(entryResponse); len(resp) != 1 || resp[0] != "Hello from the editor" {
		t.Errorf("responses = %v", resp)
	}
	if f.model.textinput.Value() != "" {
		t.Error("input not cleared")
	}
}

func TestModel_ConfirmAndUndo(t *testing.T) {
	f := newFixture(t, nil, "", llm.Response{
		Success: true,
		ToolCalls: []llm.ToolCall{{
			ID:        "call_1",
			Name:      "create_scene",
			Arguments: map[string]any{"id": "tavern", "name": "Tavern"},
		}},
	})

	f.submit("make a tavern")
	f.settle(t)

	if f.model.agent.State() != core.StateWaitingForConfirmation {
		t.Fatalf("state = %s, want WaitingForConfirmation", f.model.agent.State())
	}
	if len(f.logs(entryConfirm)) != 1 {
		t.Fatalf("expected a confirmation prompt, logs: %+v", f.model.logs)
	}

	f.submit("maybe")
	if f.model.agent.State() != core.StateWaitingForConfirmation {
		t.Fatal("an unrelated answer must not resolve the prompt")
	}

	f.submit("ok")
	if _, ok := f.project.Scene("tavern"); !ok {
		t.Fatal("confirmed tool did not run")
	}
	if tool := f.logs(entryTool); len(tool) != 1 || !strings.HasPrefix(tool[0], "✓ create_scene") {
		t.Errorf("tool lines = %v", tool)
	}

	f.send(tea.KeyMsg{Type: tea.KeyCtrlZ})
	if _, ok := f.project.Scene("tavern"); ok {
		t.Error("ctrl+z did not undo the scene")
	}
	sys := f.logs(entrySystem)
	if len(sys) == 0 || !strings.HasPrefix(sys[len(sys)-1], "Undid: ") {
		t.Errorf("system lines = %v", sys)
	}
}

func TestModel_Cancel(t *testing.T) {
	f := newFixture(t, nil, "", llm.Response{
		Success:   true,
		ToolCalls: []llm.ToolCall{{ID: "c", Name: "create_level", Arguments: map[string]any{"id": "ch1", "name": "Chapter 1"}}},
	})
	f.submit("add a chapter")
	f.settle(t)

	f.submit("n")
	if f.model.agent.State() != core.StateIdle {
		t.Errorf("state = %s, want Idle", f.model.agent.State())
	}
	if _, ok := f.project.Level("ch1"); ok {
		t.Error("cancelled tool ran")
	}
}

func TestModel_ErrorAndReset(t *testing.T) {
	f := newFixture(t, nil, "", llm.Response{Success: false, Error: "HTTP 500"})
	f.submit("hi")
	f.settle(t)

	if f.model.agent.State() != core.StateError {
		t.Fatalf("state = %s, want Error", f.model.agent.State())
	}
	if errs := f.logs(entryError); len(errs) == 0 {
		t.Error("expected an error line")
	}

	f.submit("/reset")
	if f.model.agent.State() != core.StateIdle {
		t.Errorf("state after /reset = %s", f.model.agent.State())
	}
}

func TestModel_SlashCommands(t *testing.T) {
	saved := false
	f := newFixture(t, nil, "")
	f.model.save = func() error { saved = true; return nil }

	f.submit("/save")
	if !saved {
		t.Error("/save did not call the save hook")
	}

	f.submit("/undo")
	f.submit("/bogus")

	sys := f.logs(entrySystem)
	if len(sys) < 2 || sys[1] != "Nothing to undo" {
		t.Errorf("system lines = %v", sys)
	}
	if errs := f.logs(entryError); len(errs) != 1 || !strings.Contains(errs[0], "/bogus") {
		t.Errorf("error lines = %v", errs)
	}
	if len(f.provider.seen) != 0 {
		t.Error("slash commands must not reach the provider")
	}
}

func TestModel_InputHistory(t *testing.T) {
	f := newFixture(t, nil, "")
	f.submit("/help")
	f.submit("/clear")

	f.send(tea.KeyMsg{Type: tea.KeyUp})
	if got := f.model.textinput.Value(); got != "/clear" {
		t.Errorf("up = %q, want /clear", got)
	}
	f.send(tea.KeyMsg{Type: tea.KeyUp})
	if got := f.model.textinput.Value(); got != "/help" {
		t.Errorf("up twice = %q, want /help", got)
	}
	f.send(tea.KeyMsg{Type: tea.KeyDown})
	f.send(tea.KeyMsg{Type: tea.KeyDown})
	if got := f.model.textinput.Value(); got != "" {
		t.Errorf("down past the end = %q, want empty", got)
	}
}

func TestModel_Transcript(t *testing.T) {
	store, err := transcript.Open(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	sess, err := store.NewSession("demo", "scripted", "scripted-1")
	if err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, store, sess.ID, llm.Response{Success: true, Content: "Done"})
	f.submit("hello")
	f.settle(t)

	entries, err := store.Entries(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Kind != transcript.KindUser || entries[0].Content != "hello" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Kind != transcript.KindAgent || entries[1].Content != "Done" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestOutbox_StreamReplacedByResponse(t *testing.T) {
	f := newFixture(t, nil, "")
	f.model.logs = append(f.model.logs, logEntry{Type: entryStreaming, Content: "Hel"})
	f.model.out.chunk("lo")
	f.model.out.push("Hello", false)
	f.model = f.model.drain()

	if s := f.logs(entryStreaming); len(s) != 0 {
		t.Errorf("streaming entry survived: %v", s)
	}
	if resp := f.logs(entryResponse); len(resp) != 1 || resp[0] != "Hello" {
		t.Errorf("responses = %v", resp)
	}
}

func TestOutbox_DanglingStreamKept(t *testing.T) {
	f := newFixture(t, nil, "")
	f.model.out.chunk("Hel")
	f.model.out.chunk("lo")
	f.model = f.model.drain()

	if resp := f.logs(entryResponse); len(resp) != 1 || resp[0] != "Hello" {
		t.Errorf("responses = %v", resp)
	}
}
