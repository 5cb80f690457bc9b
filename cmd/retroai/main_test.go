package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
	"github.com/retroengine/retroai/pkg/llm"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type scriptedProvider struct {
	mu        sync.Mutex
	responses []llm.Response
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) IsAvailable() bool         { return true }
func (p *scriptedProvider) SetAPIKey(string)          {}
func (p *scriptedProvider) AvailableModels() []string { return nil }

func (p *scriptedProvider) Chat(context.Context, []llm.Message, []llm.ToolDefinition, llm.Config) llm.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.responses) == 0 {
		return llm.Response{Success: false, Error: "no scripted response"}
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r
}

func (p *scriptedProvider) ChatStream(ctx context.Context, m []llm.Message, d []llm.ToolDefinition, _ llm.StreamCallback, cfg llm.Config) llm.Response {
	return p.Chat(ctx, m, d, cfg)
}

func testSettings(t *testing.T) settings {
	t.Helper()
	s := defaultSettings()
	s.ProjectDir = filepath.Join(t.TempDir(), "project")
	return s
}

func TestLoadSettings_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := defaultSettings()
	want.Provider = "anthropic"
	want.Model = "claude-sonnet-4-5-20250514"
	want.MaxToolCalls = 3
	want.ErrorPolicy = "idle"
	want.APIKeys = map[string]string{"anthropic": "{{env:MY_CLAUDE_KEY}}"}
	if err := writeSettings(path, want); err != nil {
		t.Fatalf("writeSettings failed: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}
	got, err := loadSettings(v)
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	if got.Provider != "anthropic" || got.Model != want.Model || got.MaxToolCalls != 3 {
		t.Errorf("unexpected settings: %+v", got)
	}

	cfg, err := got.agentConfig()
	if err != nil {
		t.Fatalf("agentConfig failed: %v", err)
	}
	if cfg.ErrorPolicy != core.ErrorActsAsIdle || cfg.MaxToolCalls != 3 || cfg.LLM.Model != want.Model {
		t.Errorf("unexpected agent config: %+v", cfg)
	}
}

func TestSettings_InvalidPolicies(t *testing.T) {
	s := defaultSettings()
	s.ErrorPolicy = "sometimes"
	if _, err := s.agentConfig(); err == nil {
		t.Error("expected an error for an unknown error policy")
	}

	s = defaultSettings()
	s.ModelPolicy = "maybe"
	if _, err := s.providerSettings("openai", nil); err == nil {
		t.Error("expected an error for an unknown model policy")
	}
}

func TestSettings_APIKey(t *testing.T) {
	t.Setenv("MY_CLAUDE_KEY", "from-ref")
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("GEMINI_API_KEY", "")

	s := defaultSettings()
	s.APIKeys = map[string]string{
		"anthropic": "{{env:MY_CLAUDE_KEY}}",
		"ollama":    "literal",
		"gemini":    "{{env:UNSET_VARIABLE_FOR_TEST}}",
	}

	tests := []struct {
		provider string
		want     string
	}{
		{"anthropic", "from-ref"},
		{"ollama", "literal"},
		{"openai", "from-env"},
		{"gemini", ""},
	}
	for _, tt := range tests {
		if got := s.apiKey(tt.provider); got != tt.want {
			t.Errorf("apiKey(%s) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSettings_ProviderDefaultModel(t *testing.T) {
	s := defaultSettings()
	s.Model = "gpt-4o-mini"

	ps, _ := s.providerSettings("openai", nil)
	if ps.DefaultModel != "gpt-4o-mini" {
		t.Errorf("openai default model = %q", ps.DefaultModel)
	}
	ps, _ = s.providerSettings("anthropic", nil)
	if ps.DefaultModel != "" {
		t.Errorf("a foreign model must not become the anthropic default: %q", ps.DefaultModel)
	}

	s.OAuth2 = oauth2Settings{ClientID: "id", ClientSecret: "secret", TokenURL: "https://auth.example.com/token"}
	ps, _ = s.providerSettings("openai", nil)
	if ps.OAuth2 == nil || ps.OAuth2.ClientID != "id" {
		t.Errorf("oauth2 settings not passed: %+v", ps.OAuth2)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(io.Discard, "debug"); err != nil {
		t.Errorf("debug rejected: %v", err)
	}
	if _, err := newLogger(io.Discard, "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestWorkspace_Autosave(t *testing.T) {
	s := testSettings(t)
	w, err := openWorkspace(s, discard)
	if err != nil {
		t.Fatalf("openWorkspace failed: %v", err)
	}

	tool, _ := w.registry.Get("create_scene")
	res, err := tool.Execute(map[string]any{"id": "tavern", "name": "Tavern"})
	if err != nil || !res.Success {
		t.Fatalf("create_scene failed: %v %s", err, res.Message)
	}
	if err := w.history.Execute(res.Command); err != nil {
		t.Fatal(err)
	}
	if w.project.Dirty() {
		t.Error("autosave did not run after the change")
	}

	reloaded, err := editor.LoadProject(s.ProjectDir, "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Scene("tavern"); !ok {
		t.Error("saved project lacks the scene")
	}
}

func askFixture(t *testing.T, responses ...llm.Response) (*workspace, *[]string) {
	t.Helper()
	w, err := openWorkspace(testSettings(t), discard)
	if err != nil {
		t.Fatalf("openWorkspace failed: %v", err)
	}
	w.agent.SetProvider(&scriptedProvider{responses: responses})
	var lines []string
	return w, &lines
}

func collect(lines *[]string) core.Callback {
	return func(message string, isError bool) { *lines = append(*lines, message) }
}

var createTavern = llm.Response{
	Success: true,
	ToolCalls: []llm.ToolCall{{
		ID: "call_1", Name: "create_scene",
		Arguments: map[string]any{"id": "tavern", "name": "Tavern"},
	}},
}

func TestAsk_Confirmed(t *testing.T) {
	w, lines := askFixture(t, createTavern)
	if err := ask(context.Background(), w.agent, "make a tavern", true, collect(lines)); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if _, ok := w.project.Scene("tavern"); !ok {
		t.Error("confirmed change was not applied")
	}
	if !strings.HasPrefix((*lines)[len(*lines)-1], "✓ create_scene") {
		t.Errorf("lines = %v", *lines)
	}
}

func TestAsk_CancelledWithoutYes(t *testing.T) {
	w, lines := askFixture(t, createTavern)
	if err := ask(context.Background(), w.agent, "make a tavern", false, collect(lines)); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if _, ok := w.project.Scene("tavern"); ok {
		t.Error("change applied without --yes")
	}
	if got := (*lines)[len(*lines)-1]; !strings.Contains(got, "--yes") {
		t.Errorf("last line = %q", got)
	}
}

func TestAsk_ProviderError(t *testing.T) {
	w, lines := askFixture(t, llm.Response{Success: false, Error: "HTTP 401"})
	err := ask(context.Background(), w.agent, "hi", false, collect(lines))
	if err == nil || !strings.Contains(err.Error(), "HTTP 401") {
		t.Errorf("err = %v", err)
	}
}

func TestAskAndClose_ReportsSaveFailure(t *testing.T) {
	s := testSettings(t)
	s.Autosave = false
	w, err := openWorkspace(s, discard)
	if err != nil {
		t.Fatalf("openWorkspace failed: %v", err)
	}
	w.agent.SetProvider(&scriptedProvider{responses: []llm.Response{createTavern}})

	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.settings.ProjectDir = filepath.Join(blocker, "project")

	var lines []string
	err = askAndClose(context.Background(), w, "make a tavern", true, collect(&lines))
	if err == nil || !strings.Contains(err.Error(), "save project") {
		t.Fatalf("err = %v, want a save failure", err)
	}
	if _, ok := w.project.Scene("tavern"); !ok {
		t.Error("change was not applied before the save")
	}
}

func TestAskAndClose_Saves(t *testing.T) {
	s := testSettings(t)
	s.Autosave = false
	w, err := openWorkspace(s, discard)
	if err != nil {
		t.Fatalf("openWorkspace failed: %v", err)
	}
	w.agent.SetProvider(&scriptedProvider{responses: []llm.Response{createTavern}})

	var lines []string
	if err := askAndClose(context.Background(), w, "make a tavern", true, collect(&lines)); err != nil {
		t.Fatalf("askAndClose failed: %v", err)
	}
	reloaded, err := editor.LoadProject(s.ProjectDir, "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Scene("tavern"); !ok {
		t.Error("project was not saved on close")
	}
}

func TestDefaultProjectName(t *testing.T) {
	tests := []struct {
		name  string
		cwd   string
		err   error
		wants string
	}{
		{"directory name", filepath.Join("home", "dev", "castle"), nil, "castle"},
		{"getwd fails", "", errors.New("stale handle"), fallbackProjectName},
		{"filesystem root", string(filepath.Separator), nil, fallbackProjectName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getwd := func() (string, error) { return tt.cwd, tt.err }
			if got := defaultProjectName(getwd, discard); got != tt.wants {
				t.Errorf("defaultProjectName() = %q, want %q", got, tt.wants)
			}
		})
	}
}

func TestPrintTools(t *testing.T) {
	w, err := openWorkspace(testSettings(t), discard)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printTools(&buf, w.registry, "world")
	out := buf.String()
	if !strings.Contains(out, "create_level*") || !strings.Contains(out, "get_world_info") {
		t.Errorf("world tools missing:\n%s", out)
	}
	if strings.Contains(out, "list_scenes") {
		t.Errorf("category filter ignored:\n%s", out)
	}

	buf.Reset()
	if err := printDefinitions(&buf, w.registry); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "execute_command") {
		t.Error("definitions miss execute_command")
	}
}
