// Package tools implements the editor tools the agent can call. Every tool
// works on an editor.Project; mutating tools apply their change immediately
// and return the undo command for the host's UndoStack.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// Tool categories.
const (
	CategoryScenes   = "scenes"
	CategoryHotspots = "hotspots"
	CategoryActors   = "actors"
	CategoryDialogs  = "dialogs"
	CategoryQuests   = "quests"
	CategoryItems    = "items"
	CategoryWorld    = "world"
	CategoryContext  = "context"
	CategorySystem   = "system"
)

// decode copies the loosely typed arguments into a params struct.
func decode(args map[string]any, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse arguments: %w", err)
	}
	return nil
}

// object builds a JSON Schema object. The required list is omitted when empty.
func object(props map[string]any, required ...string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func str(desc string) map[string]any     { return prop("string", desc) }
func integer(desc string) map[string]any { return prop("integer", desc) }
func number(desc string) map[string]any  { return prop("number", desc) }
func boolean(desc string) map[string]any { return prop("boolean", desc) }

func enum(desc string, values ...string) map[string]any {
	p := str(desc)
	p["enum"] = values
	return p
}

// apply runs cmd against the project and records it in the recent actions.
func apply(p *editor.Project, cmd core.Command) (core.Command, error) {
	cmd, err := editor.Apply(cmd)
	if err != nil {
		return nil, err
	}
	p.RecordAction(cmd.Description())
	return cmd, nil
}

// withDiff adds a unified diff of the change to a result's data when one exists.
func withDiff(data map[string]any, name string, before, after any) map[string]any {
	if d := editor.Diff(name, before, after); d != "" {
		data["diff"] = d
	}
	return data
}

// base holds the project every editor tool works on.
type base struct {
	project *editor.Project
}

func (b base) scene(id string) (editor.Scene, core.ToolResult, bool) {
	s, ok := b.project.Scene(id)
	if !ok {
		return s, core.Failuref("Scene not found: %s", id), false
	}
	return s, core.ToolResult{}, true
}
