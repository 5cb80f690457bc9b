package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGeminiProvider_Chat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates":[{"content":{"role":"model","parts":[
				{"text":"Looking."},
				{"functionCall":{"name":"get_scene","args":{"scene_id":"cave"}}}
			]}}],
			"usageMetadata":{"totalTokenCount":21}
		}`))
	}))
	t.Cleanup(srv.Close)

	p := NewGeminiProvider(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	p.SetAPIKey("g-key")

	messages := []Message{SystemMessage("rules"), UserMessage("show the cave")}
	tools := []ToolDefinition{{Name: "get_scene", Description: "Get a scene", Parameters: map[string]any{"type": "object"}}}
	resp := p.Chat(context.Background(), messages, tools, Config{Model: "gemini-2.5-flash", MaxTokens: 100})
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if resp.Content != "Looking." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 21 {
		t.Errorf("TokensUsed = %d", resp.TokensUsed)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.ID == "" || call.Name != "get_scene" || call.Arguments["scene_id"] != "cave" {
		t.Errorf("call = %+v", call)
	}

	if _, ok := got["systemInstruction"]; !ok {
		t.Error("system message should be sent as systemInstruction")
	}
	if contents, _ := got["contents"].([]any); len(contents) != 1 {
		t.Errorf("contents = %v, want only the user turn", got["contents"])
	}

	// The follow-up tool result is addressed by the remembered function name.
	_, follow := p.toContents([]Message{ToolResultMessage(call.ID, `{"success":true,"message":"ok"}`)})
	fr := follow[0].Parts[0].FunctionResponse
	if fr == nil || fr.Name != "get_scene" || fr.Response["message"] != "ok" {
		t.Errorf("function response = %+v", fr)
	}
}

func TestGeminiProvider_CallNamesFollowHistory(t *testing.T) {
	p := NewGeminiProvider()
	p.callNames["old"] = "get_scene"
	p.callNames["kept"] = "list_items"

	_, contents := p.toContents([]Message{UserMessage("hi"), ToolResultMessage("kept", `{"success":true}`)})
	if got := contents[1].Parts[0].FunctionResponse.Name; got != "list_items" {
		t.Errorf("function response name = %q", got)
	}
	if _, ok := p.callNames["old"]; ok {
		t.Error("id missing from history should be dropped")
	}
	if len(p.callNames) != 1 {
		t.Errorf("callNames = %v", p.callNames)
	}

	// A cleared history forgets every id.
	p.toContents([]Message{UserMessage("fresh start")})
	if len(p.callNames) != 0 {
		t.Errorf("callNames after cleared history = %v", p.callNames)
	}
}

func TestGeminiProvider_StalledBody(t *testing.T) {
	srv := httptest.NewServer(stallingHandler(`{"candidates":[`))
	t.Cleanup(srv.Close)

	p := NewGeminiProvider(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithTimeout(200*time.Millisecond))
	p.SetAPIKey("g-key")
	resp := chatWithin(t, 5*time.Second, func() Response {
		return p.Chat(context.Background(), []Message{UserMessage("x")}, nil, DefaultConfig())
	})
	if resp.Success || !strings.HasPrefix(resp.Error, "Request failed") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGeminiProvider_Unavailable(t *testing.T) {
	p := NewGeminiProvider()
	if p.IsAvailable() {
		t.Fatal("provider without key should be unavailable")
	}
	if resp := p.Chat(context.Background(), nil, nil, DefaultConfig()); resp.Success {
		t.Error("chat without key should fail")
	}
}

func TestFunctionResponse(t *testing.T) {
	if got := functionResponse(`{"a":1}`); got["a"] != float64(1) {
		t.Errorf("object content = %v", got)
	}
	if got := functionResponse("plain"); got["output"] != "plain" {
		t.Errorf("plain content = %v", got)
	}
}
