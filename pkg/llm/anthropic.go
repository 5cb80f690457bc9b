package llm

import (
	"context"
	"strings"
	"sync"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicDefaultModel = "claude-sonnet-4-5-20250514"
	anthropicVersion      = "2023-06-01"
)

type anthropicContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
}

type anthropicMessage struct {
	Role string `json:"role"`
	// Content is either a plain string or a slice of content blocks.
	Content any `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	errorField
	Content []anthropicContentBlock `json:"content"`
	Usage   *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	opts      options
	transport *transport

	mu     sync.RWMutex
	apiKey string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(opts ...Option) *AnthropicProvider {
	o := buildOptions(anthropicBaseURL, anthropicDefaultModel, opts)
	return &AnthropicProvider{opts: o, transport: newTransport(o)}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string { return FamilyAnthropic }

// IsAvailable reports whether an API key is set.
func (p *AnthropicProvider) IsAvailable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.apiKey != ""
}

// SetAPIKey sets the x-api-key credential.
func (p *AnthropicProvider) SetAPIKey(key string) {
	p.mu.Lock()
	p.apiKey = key
	p.mu.Unlock()
}

// AvailableModels lists the Claude models offered by default.
func (p *AnthropicProvider) AvailableModels() []string {
	return []string{
		"claude-sonnet-4-5-20250514",
		"claude-opus-4-20250514",
		"claude-3-5-haiku-20241022",
	}
}

// ChatStream delegates to Chat; the callback is not invoked.
func (p *AnthropicProvider) ChatStream(ctx context.Context, messages []Message, tools []ToolDefinition, cb StreamCallback, cfg Config) Response {
	return p.Chat(ctx, messages, tools, cfg)
}

// Chat sends one Messages API request. System messages are hoisted into the
// top-level system field and tool results are sent as user turns.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, cfg Config) Response {
	p.mu.RLock()
	key := p.apiKey
	p.mu.RUnlock()
	if key == "" {
		return failure("Anthropic API key not set")
	}

	model, notice, err := resolveModel(cfg.Model, FamilyAnthropic, p.opts.defaultModel, p.opts.modelPolicy, p.opts.logger)
	if err != nil {
		return failure("%v", err)
	}

	system, turns := toAnthropicMessages(messages)
	req := anthropicRequest{
		Model:       model,
		MaxTokens:   cfg.MaxTokens,
		System:      system,
		Messages:    turns,
		Temperature: cfg.Temperature,
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	headers := map[string]string{
		"x-api-key":         key,
		"anthropic-version": anthropicVersion,
	}
	status, body, err := p.transport.post(ctx, p.opts.baseURL+"/v1/messages", headers, req)
	if err != nil {
		return failure("Request failed: %v", err)
	}

	var wire anthropicResponse
	if resp, ok := decodeReply(status, body, &wire); !ok {
		return resp
	}
	resp := parseAnthropicResponse(wire)
	resp.Notice = notice
	return resp
}

// toAnthropicMessages hoists system text and maps the remaining history onto
// turns. Message carries text only, so no tool_use block is rebuilt for the
// assistant turn that requested a tool, and the tool_result turn that follows
// refers to a tool_use id the API has not seen in this request.
func toAnthropicMessages(messages []Message) (string, []anthropicMessage) {
	var system []string
	turns := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleTool:
			turns = append(turns, anthropicMessage{
				Role: "user",
				Content: []anthropicContentBlock{{
					Type:      "tool_result",
					ToolUseID: m.ToolCallID,
					Content:   m.Content,
				}},
			})
		default:
			turns = append(turns, anthropicMessage{Role: m.Role.String(), Content: m.Content})
		}
	}
	return strings.Join(system, "\n"), turns
}

func parseAnthropicResponse(wire anthropicResponse) Response {
	resp := Response{Success: true}
	var text strings.Builder
	for _, block := range wire.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := block.Input
			if args == nil {
				args = map[string]any{}
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	resp.Content = text.String()
	if wire.Usage != nil {
		resp.TokensUsed = wire.Usage.InputTokens + wire.Usage.OutputTokens
	}
	return resp
}

var _ Provider = (*AnthropicProvider)(nil)
