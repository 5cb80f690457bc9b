package core

import (
	"encoding/json"
	"strings"
)

// Placeholders recognized in system prompt templates.
const (
	PlaceholderCurrentRoom       = "{current_room}"
	PlaceholderCurrentLevel      = "{current_level}"
	PlaceholderSelectedActor     = "{selected_actor}"
	PlaceholderRecentActions     = "{recent_actions}"
	PlaceholderAdditionalContext = "{additional_context}"
)

const emptyContextValue = "(none)"

// DefaultSystemPrompt returns the built-in prompt template.
func DefaultSystemPrompt() string {
	var sb strings.Builder

	// order matters: identity first, context last
	sb.WriteString(buildIdentitySection())
	sb.WriteString(buildCapabilitiesSection())
	sb.WriteString(buildRulesSection())
	sb.WriteString(buildContextSection())

	return sb.String()
}

// buildIdentitySection returns the assistant identity section.
func buildIdentitySection() string {
	return `You are an AI assistant for the Retro Engine Editor, a 2D adventure game engine inspired by LucasArts classics.

You help the user to:
- Create and modify scenes (rooms)
- Place and configure hotspots and interactive objects
- Create NPCs and dialog trees
- Design quests and objectives
- Organize scenes into levels
- Manage actors and components

`
}

func buildCapabilitiesSection() string {
	return `Available tools allow you to:
- List, create, modify and delete scenes, hotspots and actors
- Write dialogs, quests and inventory items
- Arrange levels and choose where the game starts
- Inspect and change the editor selection
- Undo and redo earlier changes

`
}

func buildRulesSection() string {
	return `Rules:
1. Always use tools to perform changes - never just describe what could be done
2. Ask for clarification if you're unsure about the user's intention
3. Destructive operations (delete) are confirmed by the user before they run
4. All changes can be undone with Ctrl+Z or the undo tool
5. Respond in English
6. Be concise and helpful

`
}

func buildContextSection() string {
	return `Current context:
- Scene: {current_room}
- Level: {current_level}
- Selected actor: {selected_actor}
- Recent actions: {recent_actions}
- Additional: {additional_context}
`
}

// RenderSystemPrompt substitutes every context placeholder in template.
// Empty values render as "(none)".
func RenderSystemPrompt(template string, ctx EditorContext) string {
	r := strings.NewReplacer(
		PlaceholderCurrentRoom, orNone(ctx.CurrentRoom),
		PlaceholderCurrentLevel, orNone(ctx.CurrentLevel),
		PlaceholderSelectedActor, orNone(ctx.SelectedActor),
		PlaceholderRecentActions, orNone(strings.Join(ctx.RecentActions, "; ")),
		PlaceholderAdditionalContext, additionalContext(ctx.Additional),
	)
	return r.Replace(template)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyContextValue
	}
	return s
}

func additionalContext(extra map[string]any) string {
	if len(extra) == 0 {
		return emptyContextValue
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return emptyContextValue
	}
	return string(data)
}
