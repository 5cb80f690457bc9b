package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retroengine/retroai/pkg/llm"
)

// turnResult is what the worker goroutine posts back to the UI goroutine.
type turnResult struct {
	response llm.Response
	// fault is set when the worker panicked instead of returning.
	fault error
}

// dispatch snapshots the request and starts the worker goroutine.
func (a *Agent) dispatch() {
	messages := a.buildMessages()
	tools := a.registry.Definitions()
	cfg := a.config.LLM
	cfg.Stream = a.config.StreamResponses
	provider := a.provider

	results := make(chan turnResult, 1)
	var chunks chan string
	if cfg.Stream {
		chunks = make(chan string, streamBuffer)
	}
	a.inflight = results
	a.chunks = chunks
	a.state = StateProcessing

	a.logger.Debug("turn started",
		"provider", provider.Name(),
		"messages", len(messages),
		"tools", len(tools),
		"stream", cfg.Stream,
	)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- turnResult{fault: fmt.Errorf("%v", r)}
			}
		}()

		ctx := context.Background()
		var resp llm.Response
		if chunks != nil {
			resp = provider.ChatStream(ctx, messages, tools, func(chunk string) {
				select {
				case chunks <- chunk:
				default:
					// UI is behind; the full text still arrives with the response
				}
			}, cfg)
		} else {
			resp = provider.Chat(ctx, messages, tools, cfg)
		}
		results <- turnResult{response: resp}
	}()
}

func (a *Agent) buildMessages() []llm.Message {
	template := a.config.SystemPrompt
	if template == "" {
		template = DefaultSystemPrompt()
	}
	messages := make([]llm.Message, 0, len(a.history)+1)
	messages = append(messages, llm.SystemMessage(RenderSystemPrompt(template, a.context)))
	return append(messages, a.history...)
}

// finish consumes the worker result on the UI goroutine.
func (a *Agent) finish(res turnResult) {
	a.flushChunks()
	a.inflight = nil
	a.chunks = nil

	if res.fault != nil {
		a.fail("Async error: " + res.fault.Error())
		return
	}
	a.handleResponse(res.response)
}

func (a *Agent) fail(msg string) {
	a.state = StateError
	a.lastError = msg
	a.logger.Warn("turn failed", "err", msg)
	a.notify("Error: "+msg, true)
}

func (a *Agent) handleResponse(resp llm.Response) {
	if !resp.Success {
		a.fail(resp.Error)
		return
	}
	if resp.Notice != "" {
		a.notify(resp.Notice, true)
	}
	a.logger.Debug("turn completed", "tokens", resp.TokensUsed, "tool_calls", len(resp.ToolCalls))

	if resp.HasToolCalls() {
		calls := a.limitToolCalls(resp.ToolCalls)
		if a.needsConfirmation(calls) {
			a.pending = calls
			a.state = StateWaitingForConfirmation
			a.notify(confirmationSummary(calls), false)
		} else {
			a.executeToolCalls(calls)
		}
	}

	if resp.Content != "" {
		a.history = append(a.history, llm.AssistantMessage(resp.Content))
		a.notify(resp.Content, false)
	}

	if a.state == StateProcessing {
		a.state = StateIdle
	}
}

func (a *Agent) limitToolCalls(calls []llm.ToolCall) []llm.ToolCall {
	max := a.config.MaxToolCalls
	if max <= 0 || len(calls) <= max {
		return calls
	}
	a.logger.Warn("tool call batch truncated", "requested", len(calls), "limit", max)
	a.notify(fmt.Sprintf("The model requested %d tool calls; only the first %d will run.", len(calls), max), true)
	return calls[:max]
}

func (a *Agent) needsConfirmation(calls []llm.ToolCall) bool {
	if !a.config.RequireConfirmation {
		return false
	}
	for _, call := range calls {
		if t, ok := a.registry.Get(call.Name); ok && RequiresConfirmation(t) {
			return true
		}
	}
	return false
}

func confirmationSummary(calls []llm.ToolCall) string {
	var sb strings.Builder
	sb.WriteString("I want to perform the following:\n")
	for _, call := range calls {
		sb.WriteString("- ")
		sb.WriteString(call.Name)
		sb.WriteString("\n")
	}
	sb.WriteString("\nConfirm with 'OK' or cancel.")
	return sb.String()
}

// executeToolCalls runs a batch in order, reporting each result and recording
// it in history under the call id.
func (a *Agent) executeToolCalls(calls []llm.ToolCall) {
	for _, call := range calls {
		result := a.executeToolCall(call)

		if result.Success {
			a.notify(fmt.Sprintf("✓ %s: %s", call.Name, result.Message), false)
			if result.Command != nil && a.commands != nil {
				if err := a.commands.Execute(result.Command); err != nil {
					a.logger.Warn("command rejected", "tool", call.Name, "err", err)
					a.notify(fmt.Sprintf("✗ %s: could not record undo step: %v", call.Name, err), true)
				}
			}
		} else {
			a.notify(fmt.Sprintf("✗ %s: %s", call.Name, result.Message), true)
		}

		a.history = append(a.history, llm.ToolResultMessage(call.ID, encodeToolResult(result)))
	}
}

// executeToolCall validates arguments and runs one tool. Faults and panics
// become failed results.
func (a *Agent) executeToolCall(call llm.ToolCall) (result ToolResult) {
	tool, ok := a.registry.Get(call.Name)
	if !ok {
		return Failure("Tool not found: " + call.Name)
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArguments(tool.Parameters(), args); err != nil {
		return Failuref("Invalid arguments: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("tool panicked", "tool", call.Name, "panic", r)
			result = Failuref("Exception: %v", r)
		}
	}()

	res, err := tool.Execute(args)
	if err != nil {
		a.logger.Warn("tool fault", "tool", call.Name, "err", err)
		return Failure("Exception: " + err.Error())
	}
	return res
}

type toolResultPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// encodeToolResult serializes a result for the tool message. Empty data
// (nil, {} or []) is omitted.
func encodeToolResult(r ToolResult) string {
	payload := toolResultPayload{Success: r.Success, Message: r.Message}
	if r.Data != nil {
		if raw, err := json.Marshal(r.Data); err == nil {
			switch string(raw) {
			case "null", "{}", "[]":
			default:
				payload.Data = json.RawMessage(raw)
			}
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"success":%t,"message":%q}`, r.Success, r.Message)
	}
	return string(data)
}
