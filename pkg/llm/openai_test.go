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

// newOpenAITestServer creates an httptest server and an OpenAI provider wired to it.
func newOpenAITestServer(t *testing.T, handler http.HandlerFunc, opts ...Option) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	all := append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	p := NewOpenAIProvider(all...)
	p.SetAPIKey("test-key")
	return p
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	p := NewOpenAIProvider()
	if p.IsAvailable() {
		t.Fatal("provider without key should be unavailable")
	}
	p.SetAPIKey("sk-test")
	if !p.IsAvailable() {
		t.Fatal("provider with key should be available")
	}
	resp := NewOpenAIProvider().Chat(context.Background(), nil, nil, DefaultConfig())
	if resp.Success {
		t.Fatal("chat without key should fail")
	}
}

func TestOpenAIProvider_RequestTranslation(t *testing.T) {
	var got map[string]any
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}],"usage":{"total_tokens":7}}`))
	})

	messages := []Message{
		SystemMessage("be brief"),
		UserMessage("hello"),
		ToolResultMessage("call_1", `{"success":true,"message":"ok"}`),
	}
	tools := []ToolDefinition{{
		Name:        "list_scenes",
		Description: "List scenes",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	}}
	resp := p.Chat(context.Background(), messages, tools, DefaultConfig())
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if resp.Content != "hi" || resp.TokensUsed != 7 {
		t.Errorf("resp = %+v", resp)
	}

	if got["model"] != "gpt-4o" {
		t.Errorf("model = %v", got["model"])
	}
	if got["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v", got["tool_choice"])
	}
	msgs := got["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	toolMsg := msgs[2].(map[string]any)
	if toolMsg["role"] != "tool" || toolMsg["tool_call_id"] != "call_1" {
		t.Errorf("tool message = %v", toolMsg)
	}
	tool := got["tools"].([]any)[0].(map[string]any)
	if tool["type"] != "function" {
		t.Errorf("tool type = %v", tool["type"])
	}
	if fn := tool["function"].(map[string]any); fn["name"] != "list_scenes" {
		t.Errorf("function name = %v", fn["name"])
	}
}

func TestOpenAIProvider_ToolCalls(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":null,"tool_calls":[
			{"id":"call_a","type":"function","function":{"name":"get_scene","arguments":"{\"scene_id\":\"tavern\"}"}},
			{"id":"call_b","type":"function","function":{"name":"list_items","arguments":""}}
		]}}]}`))
	})

	resp := p.Chat(context.Background(), []Message{UserMessage("x")}, nil, DefaultConfig())
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("tool calls = %d, want 2", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].ID != "call_a" || resp.ToolCalls[0].Arguments["scene_id"] != "tavern" {
		t.Errorf("first call = %+v", resp.ToolCalls[0])
	}
	if resp.ToolCalls[1].Arguments == nil {
		t.Error("empty arguments should decode to an empty map")
	}
}

func TestOpenAIProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"error object", http.StatusUnauthorized, `{"error":{"message":"Invalid API key","type":"auth"}}`, "Invalid API key"},
		{"error without message", http.StatusBadRequest, `{"error":{"code":42}}`, `{"code":42}`},
		{"non-json error page", http.StatusBadGateway, `<html>bad gateway</html>`, "HTTP 502"},
		{"malformed success body", http.StatusOK, `{"choices":[`, "Parse error"},
		{"bad arguments", http.StatusOK, `{"choices":[{"message":{"tool_calls":[{"id":"c","function":{"name":"t","arguments":"{oops"}}]}}]}`, "Parse error"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			resp := p.Chat(context.Background(), []Message{UserMessage("x")}, nil, DefaultConfig())
			if resp.Success {
				t.Fatal("expected failure")
			}
			if !strings.Contains(resp.Error, tt.wantErr) {
				t.Errorf("Error = %q, want it to contain %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestOpenAIProvider_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOpenAIProvider(WithBaseURL(url))
	p.SetAPIKey("k")
	resp := p.Chat(context.Background(), []Message{UserMessage("x")}, nil, DefaultConfig())
	if resp.Success || !strings.HasPrefix(resp.Error, "Request failed") {
		t.Errorf("resp = %+v", resp)
	}
}

// stallingHandler sends a 200 and part of a body, then goes silent until the
// client gives up.
func stallingHandler(partial string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(partial))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}
}

// chatWithin runs fn and fails the test if it has not returned after limit.
func chatWithin(t *testing.T, limit time.Duration, fn func() Response) Response {
	t.Helper()
	done := make(chan Response, 1)
	go func() { done <- fn() }()
	select {
	case resp := <-done:
		return resp
	case <-time.After(limit):
		t.Fatalf("chat still blocked after %v", limit)
		return Response{}
	}
}

func TestOpenAIProvider_StalledBody(t *testing.T) {
	p := newOpenAITestServer(t, stallingHandler(`{"choices":[`), WithTimeout(200*time.Millisecond))

	resp := chatWithin(t, 5*time.Second, func() Response {
		return p.Chat(context.Background(), []Message{UserMessage("x")}, nil, DefaultConfig())
	})
	if resp.Success || !strings.HasPrefix(resp.Error, "Request failed") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestOpenAIProvider_StreamDelegates(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"whole"}}]}`))
	})
	calls := 0
	resp := p.ChatStream(context.Background(), []Message{UserMessage("x")}, nil, func(string) { calls++ }, DefaultConfig())
	if !resp.Success || resp.Content != "whole" {
		t.Fatalf("resp = %+v", resp)
	}
	if calls != 0 {
		t.Errorf("callback invoked %d times, want 0", calls)
	}
}
