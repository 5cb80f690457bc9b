package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ollamaBaseURL      = "https://ollama.com"
	ollamaDefaultModel = "llama3.1"
	ollamaFamily       = "ollama"
)

// ollamaMessage represents a chat message on the Ollama wire.
type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

// ollamaChatRequest represents an Ollama chat request
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Tools    []openAITool    `json:"tools,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

// ollamaChatResponse represents one Ollama chat response (or stream chunk)
type ollamaChatResponse struct {
	errorField
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

// OllamaProvider handles communication with an Ollama server, local or hosted.
type OllamaProvider struct {
	opts      options
	transport *transport

	mu     sync.RWMutex
	apiKey string
	models []string
}

// NewOllamaProvider creates a new Ollama provider. The hosted endpoint needs
// an API key; pass WithKeyless for a local server.
func NewOllamaProvider(opts ...Option) *OllamaProvider {
	all := append([]Option{WithHTTPClient(&http.Client{Timeout: 60 * time.Second})}, opts...)
	o := buildOptions(ollamaBaseURL, ollamaDefaultModel, all)
	return &OllamaProvider{opts: o, transport: newTransport(o)}
}

// Name returns "ollama".
func (p *OllamaProvider) Name() string { return ollamaFamily }

// IsAvailable reports whether an API key is set or the server needs none.
func (p *OllamaProvider) IsAvailable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.apiKey != "" || p.opts.keyless
}

// SetAPIKey sets the bearer token used for the hosted endpoint.
func (p *OllamaProvider) SetAPIKey(key string) {
	p.mu.Lock()
	p.apiKey = key
	p.mu.Unlock()
}

// AvailableModels returns the models found by the last RefreshModels call,
// or a default list if it has not run.
func (p *OllamaProvider) AvailableModels() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.models) > 0 {
		return append([]string(nil), p.models...)
	}
	return []string{ollamaDefaultModel, "qwen2.5", "mistral"}
}

// RefreshModels asks the server which models it has pulled. It also serves
// as a connection check.
func (p *OllamaProvider) RefreshModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/api/tags", p.opts.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setAuth(req.Header.Set)

	resp, err := p.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	p.mu.Lock()
	p.models = names
	p.mu.Unlock()
	return names, nil
}

// Chat sends a non-streaming chat request.
func (p *OllamaProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, cfg Config) Response {
	return p.ChatStream(ctx, messages, tools, nil, cfg)
}

// ChatStream sends a chat request. With a non-nil callback the reply is
// streamed as newline-delimited JSON and each content chunk is delivered as
// it arrives.
func (p *OllamaProvider) ChatStream(ctx context.Context, messages []Message, tools []ToolDefinition, cb StreamCallback, cfg Config) Response {
	if !p.IsAvailable() {
		return failure("Ollama API key not set")
	}
	model, notice, err := resolveModel(cfg.Model, ollamaFamily, p.opts.defaultModel, p.opts.modelPolicy, p.opts.logger)
	if err != nil {
		return failure("%v", err)
	}

	req := ollamaChatRequest{
		Model:    model,
		Messages: toOllamaMessages(messages),
		Stream:   cb != nil,
		Options: map[string]any{
			"temperature": cfg.Temperature,
			"num_predict": cfg.MaxTokens,
		},
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	headers := map[string]string{}
	p.setAuth(func(k, v string) { headers[k] = v })
	url := fmt.Sprintf("%s/api/chat", p.opts.baseURL)

	var resp Response
	if cb == nil {
		resp = p.chatOnce(ctx, url, headers, req)
	} else {
		resp = p.chatStreaming(ctx, url, headers, req, cb)
	}
	resp.Notice = notice
	return resp
}

func (p *OllamaProvider) setAuth(set func(key, value string)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.apiKey != "" {
		set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}
}

func (p *OllamaProvider) chatOnce(ctx context.Context, url string, headers map[string]string, req ollamaChatRequest) Response {
	status, body, err := p.transport.post(ctx, url, headers, req)
	if err != nil {
		return failure("Request failed: %v", err)
	}
	var wire ollamaChatResponse
	if resp, ok := decodeReply(status, body, &wire); !ok {
		return resp
	}
	resp := Response{Success: true, Content: wire.Message.Content}
	resp.ToolCalls = fromOllamaToolCalls(wire.Message.ToolCalls)
	resp.TokensUsed = wire.PromptEvalCount + wire.EvalCount
	return resp
}

func (p *OllamaProvider) chatStreaming(ctx context.Context, url string, headers map[string]string, req ollamaChatRequest, cb StreamCallback) Response {
	httpResp, err := p.transport.open(ctx, url, headers, req)
	if err != nil {
		return failure("Request failed: %v", err)
	}
	defer httpResp.Body.Close()

	resp := Response{Success: true}
	var content strings.Builder
	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var chunk ollamaChatResponse
		if r, ok := decodeReply(httpResp.StatusCode, line, &chunk); !ok {
			return r
		}
		if chunk.Message.Content != "" {
			content.WriteString(chunk.Message.Content)
			cb(chunk.Message.Content)
		}
		resp.ToolCalls = append(resp.ToolCalls, fromOllamaToolCalls(chunk.Message.ToolCalls)...)
		if chunk.Done {
			resp.TokensUsed = chunk.PromptEvalCount + chunk.EvalCount
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return failure("Request failed: %v", err)
	}
	resp.Content = content.String()
	return resp
}

func toOllamaMessages(messages []Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, ollamaMessage{Role: m.Role.String(), Content: m.Content})
	}
	return out
}

// fromOllamaToolCalls converts wire calls. Ollama does not assign call ids,
// so each call gets a fresh one.
func fromOllamaToolCalls(calls []ollamaToolCall) []ToolCall {
	var out []ToolCall
	for _, c := range calls {
		args := c.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		out = append(out, ToolCall{ID: uuid.NewString(), Name: c.Function.Name, Arguments: args})
	}
	return out
}

var _ Provider = (*OllamaProvider)(nil)
