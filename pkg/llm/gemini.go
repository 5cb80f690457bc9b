package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.5-flash"

// GeminiProvider talks to the Gemini API through the genai SDK.
type GeminiProvider struct {
	opts options

	mu     sync.RWMutex
	apiKey string
	// callNames remembers the tool name behind each call id so function
	// responses can be addressed by name, which Gemini requires. Ids that no
	// longer appear in the outgoing history are dropped on every request.
	callNames map[string]string
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(opts ...Option) *GeminiProvider {
	return &GeminiProvider{
		opts:      buildOptions("", geminiDefaultModel, opts),
		callNames: make(map[string]string),
	}
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return FamilyGemini }

// IsAvailable reports whether an API key is set.
func (p *GeminiProvider) IsAvailable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.apiKey != ""
}

// SetAPIKey sets the Gemini API key.
func (p *GeminiProvider) SetAPIKey(key string) {
	p.mu.Lock()
	p.apiKey = key
	p.mu.Unlock()
}

// AvailableModels lists the Gemini models offered by default.
func (p *GeminiProvider) AvailableModels() []string {
	return []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"}
}

// ChatStream delegates to Chat; the callback is not invoked.
func (p *GeminiProvider) ChatStream(ctx context.Context, messages []Message, tools []ToolDefinition, cb StreamCallback, cfg Config) Response {
	return p.Chat(ctx, messages, tools, cfg)
}

// Chat sends one GenerateContent request.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, cfg Config) Response {
	p.mu.RLock()
	key := p.apiKey
	p.mu.RUnlock()
	if key == "" {
		return failure("Gemini API key not set")
	}

	model, notice, err := resolveModel(cfg.Model, FamilyGemini, p.opts.defaultModel, p.opts.modelPolicy, p.opts.logger)
	if err != nil {
		return failure("%v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout)
	defer cancel()

	clientCfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.opts.httpClient,
	}
	if p.opts.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.opts.baseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return failure("Request failed: %v", err)
	}

	system, contents := p.toContents(messages)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		MaxOutputTokens: int32(cfg.MaxTokens),
	}
	if system != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			})
		}
		genCfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	result, err := client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		p.opts.logger.Warn("gemini request failed", "model", model, "err", err)
		return failure("Request failed: %v", err)
	}

	resp := p.parseResult(result)
	resp.Notice = notice
	return resp
}

func (p *GeminiProvider) toContents(messages []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	p.mu.Lock()
	defer p.mu.Unlock()
	live := make(map[string]string)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: m.Content}},
			})
		case RoleTool:
			name := p.callNames[m.ToolCallID]
			if name == "" {
				name = m.ToolCallID
			} else {
				live[m.ToolCallID] = name
			}
			contents = append(contents, &genai.Content{
				Role: string(genai.RoleUser),
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     name,
					Response: functionResponse(m.Content),
				}}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	p.callNames = live
	return strings.Join(system, "\n"), contents
}

// functionResponse wraps serialized tool output in the object Gemini expects.
func functionResponse(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"output": content}
}

func (p *GeminiProvider) parseResult(result *genai.GenerateContentResponse) Response {
	if result == nil || len(result.Candidates) == 0 {
		return failure("Parse error: response contains no candidates")
	}

	resp := Response{Success: true}
	var text strings.Builder
	if c := result.Candidates[0].Content; c != nil {
		for _, part := range c.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.Text != "" {
				text.WriteString(part.Text)
			}
			if fc := part.FunctionCall; fc != nil {
				id := fc.ID
				if id == "" {
					id = uuid.NewString()
				}
				args := fc.Args
				if args == nil {
					args = map[string]any{}
				}
				p.mu.Lock()
				p.callNames[id] = fc.Name
				p.mu.Unlock()
				resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: id, Name: fc.Name, Arguments: args})
			}
		}
	}
	resp.Content = text.String()
	if result.UsageMetadata != nil {
		resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}
	return resp
}

var _ Provider = (*GeminiProvider)(nil)
