package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newOllamaTestServer(t *testing.T, handler http.HandlerFunc, opts ...Option) *OllamaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaProvider(append([]Option{WithBaseURL(srv.URL), WithKeyless()}, opts...)...)
}

func TestOllamaProvider_Availability(t *testing.T) {
	if NewOllamaProvider().IsAvailable() {
		t.Error("hosted provider without key should be unavailable")
	}
	if !NewOllamaProvider(WithKeyless()).IsAvailable() {
		t.Error("keyless provider should be available")
	}

	p, err := NewProvider("ollama", Settings{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsAvailable() {
		t.Error("local base URL should make the provider available")
	}
}

func TestOllamaProvider_Chat(t *testing.T) {
	var req ollamaChatRequest
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&req)
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"list_scenes","arguments":{}}}]},"done":true,"prompt_eval_count":3,"eval_count":4}`)
	})

	resp := p.Chat(context.Background(), []Message{UserMessage("scenes?")}, []ToolDefinition{{Name: "list_scenes"}}, Config{Model: "qwen2.5:7b"})
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if req.Stream {
		t.Error("Chat should not request streaming")
	}
	if req.Model != "qwen2.5:7b" {
		t.Errorf("model = %q", req.Model)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].ID == "" {
		t.Fatalf("tool calls = %+v, want one call with a generated id", resp.ToolCalls)
	}
	if resp.TokensUsed != 7 {
		t.Errorf("TokensUsed = %d, want 7", resp.TokensUsed)
	}
}

func TestOllamaProvider_ChatStream(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"Hel"},"done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"message":{"content":"lo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"content":""},"done":true,"eval_count":2}`)
	})

	var chunks []string
	resp := p.ChatStream(context.Background(), []Message{UserMessage("hi")}, nil, func(c string) {
		chunks = append(chunks, c)
	}, DefaultConfig())
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if resp.Content != "Hello" {
		t.Errorf("Content = %q", resp.Content)
	}
	if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestOllamaProvider_ChatStreamStalled(t *testing.T) {
	p := newOllamaTestServer(t, stallingHandler(`{"message":{"content":"Hel"},"done":false}`+"\n"), WithTimeout(200*time.Millisecond))

	var chunks []string
	resp := chatWithin(t, 5*time.Second, func() Response {
		return p.ChatStream(context.Background(), []Message{UserMessage("hi")}, nil, func(c string) {
			chunks = append(chunks, c)
		}, DefaultConfig())
	})
	if resp.Success || !strings.HasPrefix(resp.Error, "Request failed") {
		t.Errorf("resp = %+v", resp)
	}
	if len(chunks) != 1 || chunks[0] != "Hel" {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestOllamaProvider_ErrorString(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'nope' not found"}`)
	})
	resp := p.Chat(context.Background(), []Message{UserMessage("hi")}, nil, Config{Model: "nope"})
	if resp.Success || resp.Error != "model 'nope' not found" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestOllamaProvider_RefreshModels(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[{"name":"llama3.1:8b"},{"name":"mistral:latest"}]}`)
	})
	names, err := p.RefreshModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("names = %v", names)
	}
	if got := p.AvailableModels(); got[0] != "llama3.1:8b" {
		t.Errorf("AvailableModels = %v", got)
	}
}
