package llm

import (
	"context"
	"encoding/json"
	"sync"
)

const (
	openAIBaseURL      = "https://api.openai.com"
	openAIDefaultModel = "gpt-4o"
)

type openAIMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

type openAIFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIResponse struct {
	errorField
	Choices []struct {
		Message struct {
			Content   *string          `json:"content"`
			ToolCalls []openAIToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIProvider talks to the OpenAI chat completions API or any compatible gateway.
type OpenAIProvider struct {
	opts      options
	transport *transport

	mu     sync.RWMutex
	apiKey string
}

// NewOpenAIProvider creates an OpenAI provider. Without an API key (or an
// OAuth2 configuration) it reports itself unavailable.
func NewOpenAIProvider(opts ...Option) *OpenAIProvider {
	o := buildOptions(openAIBaseURL, openAIDefaultModel, opts)
	return &OpenAIProvider{opts: o, transport: newTransport(o)}
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string { return FamilyOpenAI }

// IsAvailable reports whether a credential is configured.
func (p *OpenAIProvider) IsAvailable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.apiKey != "" || p.opts.oauth2 != nil
}

// SetAPIKey sets the bearer token.
func (p *OpenAIProvider) SetAPIKey(key string) {
	p.mu.Lock()
	p.apiKey = key
	p.mu.Unlock()
}

// AvailableModels lists the chat models offered by default.
func (p *OpenAIProvider) AvailableModels() []string {
	return []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-4.1", "o3-mini"}
}

// ChatStream delegates to Chat; the callback is not invoked.
func (p *OpenAIProvider) ChatStream(ctx context.Context, messages []Message, tools []ToolDefinition, cb StreamCallback, cfg Config) Response {
	return p.Chat(ctx, messages, tools, cfg)
}

// Chat sends one chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, cfg Config) Response {
	if !p.IsAvailable() {
		return failure("OpenAI API key not set")
	}
	model, notice, err := resolveModel(cfg.Model, FamilyOpenAI, p.opts.defaultModel, p.opts.modelPolicy, p.opts.logger)
	if err != nil {
		return failure("%v", err)
	}

	req := openAIRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
		req.ToolChoice = "auto"
	}

	headers := map[string]string{}
	p.mu.RLock()
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}
	p.mu.RUnlock()

	status, body, err := p.transport.post(ctx, p.opts.baseURL+"/v1/chat/completions", headers, req)
	if err != nil {
		return failure("Request failed: %v", err)
	}

	var wire openAIResponse
	if resp, ok := decodeReply(status, body, &wire); !ok {
		return resp
	}
	resp := parseOpenAIResponse(wire)
	resp.Notice = notice
	return resp
}

// toOpenAIMessages maps history onto chat messages. Message carries text
// only, so the assistant turn that requested a tool is sent as plain text
// with no tool_calls. The tool message that follows still names its call id,
// which the official API rejects as an orphan; OpenAI-compatible gateways
// that accept it work as expected.
func toOpenAIMessages(messages []Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, m := range messages {
		wm := openAIMessage{Role: m.Role.String(), Content: m.Content}
		if m.Role == RoleTool {
			wm.ToolCallID = m.ToolCallID
		}
		out = append(out, wm)
	}
	return out
}

func toOpenAITools(tools []ToolDefinition) []openAITool {
	out := make([]openAITool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func parseOpenAIResponse(wire openAIResponse) Response {
	if len(wire.Choices) == 0 {
		return failure("Parse error: response contains no choices")
	}
	msg := wire.Choices[0].Message

	resp := Response{Success: true}
	if msg.Content != nil {
		resp.Content = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return failure("Parse error: tool call %s arguments: %v", tc.Function.Name, err)
			}
		}
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	if wire.Usage != nil {
		resp.TokensUsed = wire.Usage.TotalTokens
	}
	return resp
}

var _ Provider = (*OpenAIProvider)(nil)
