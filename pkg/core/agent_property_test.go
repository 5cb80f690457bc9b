package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/retroengine/retroai/pkg/llm"
)

func runTurn(a *Agent, text string) bool {
	if !a.ProcessUserMessage(text) {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.Wait(ctx) == nil
}

// History grows by exactly one user message, at most one assistant message
// and one tool message per executed call on every completed turn.
func TestProperty_HistoryGrowth(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("history grows by user + assistant? + tool messages", prop.ForAll(
		func(calls int, withText bool) bool {
			var toolCalls []llm.ToolCall
			for i := 0; i < calls; i++ {
				toolCalls = append(toolCalls, toolCall(fmt.Sprintf("c%d", i), "list_scenes"))
			}
			resp := llm.Response{Success: true, ToolCalls: toolCalls}
			if withText {
				resp.Content = "done"
			}

			reg := NewRegistry(quietLogger())
			reg.Register(&mockTool{name: "list_scenes"})
			agent := NewAgent(reg, WithLogger(quietLogger()))
			agent.Initialize()
			agent.SetProvider(newMockProvider(resp))

			before := len(agent.History())
			if !runTurn(agent, "go") {
				return false
			}
			want := before + 1 + calls
			if withText {
				want++
			}
			h := agent.History()
			if len(h) != want || h[before].Role != llm.RoleUser {
				return false
			}
			return agent.State() == StateIdle
		},
		gen.IntRange(0, 8),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// A confirmed batch of N calls yields N tool messages carrying the call ids in
// order, and nothing runs before confirmation.
func TestProperty_ConfirmedBatchOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("confirm runs every pending call in order", prop.ForAll(
		func(n int) bool {
			tool := &mockTool{name: "create_scene", confirm: true}
			var toolCalls []llm.ToolCall
			for i := 0; i < n; i++ {
				toolCalls = append(toolCalls, toolCall(fmt.Sprintf("id-%d", i), "create_scene"))
			}

			reg := NewRegistry(quietLogger())
			reg.Register(tool)
			agent := NewAgent(reg, WithLogger(quietLogger()))
			agent.Initialize()
			agent.SetProvider(newMockProvider(llm.Response{Success: true, ToolCalls: toolCalls}))

			if !runTurn(agent, "go") {
				return false
			}
			if agent.State() != StateWaitingForConfirmation || tool.callCount() != 0 {
				return false
			}
			agent.ConfirmAction()

			if tool.callCount() != n || agent.State() != StateIdle {
				return false
			}
			var ids []string
			for _, m := range agent.History() {
				if m.Role == llm.RoleTool {
					ids = append(ids, m.ToolCallID)
				}
			}
			if len(ids) != n {
				return false
			}
			for i, id := range ids {
				if id != fmt.Sprintf("id-%d", i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

// The agent is never Processing after the in-flight call has been collected.
func TestProperty_ProcessingEndsAfterCollection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("collected turn leaves Processing", prop.ForAll(
		func(success bool, text string) bool {
			resp := llm.Response{Success: success, Content: text}
			if !success {
				resp.Error = "failed"
			}
			agent := NewAgent(NewRegistry(quietLogger()), WithLogger(quietLogger()))
			agent.Initialize()
			agent.SetProvider(newMockProvider(resp))
			if !runTurn(agent, "go") {
				return false
			}
			if success {
				return agent.State() == StateIdle
			}
			return agent.State() == StateError && agent.LastError() == "failed"
		},
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
