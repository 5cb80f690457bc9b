package tools

import (
	"fmt"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// HotspotTypes are the accepted hotspot kinds.
var HotspotTypes = []string{"npc", "item", "exit", "examine", "gateway"}

// ListHotspotsTool lists the hotspots of a scene.
type ListHotspotsTool struct{ base }

// NewListHotspotsTool creates a hotspot listing tool.
func NewListHotspotsTool(p *editor.Project) *ListHotspotsTool {
	return &ListHotspotsTool{base{p}}
}

// Name returns the tool name
func (t *ListHotspotsTool) Name() string { return "list_hotspots" }

// Description returns the tool description
func (t *ListHotspotsTool) Description() string { return "List all hotspots in a scene" }

// Category returns the tool category
func (t *ListHotspotsTool) Category() string { return CategoryHotspots }

// Parameters returns the tool parameter schema
func (t *ListHotspotsTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id": str("ID of the scene to list hotspots from"),
	}, "scene_id")
}

// Execute lists the hotspots
func (t *ListHotspotsTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID string `json:"scene_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	s, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}
	hotspots := s.Hotspots
	if hotspots == nil {
		hotspots = []editor.Hotspot{}
	}
	return core.OKWithData(fmt.Sprintf("Found %d hotspots in scene '%s'", len(hotspots), s.ID), hotspots), nil
}

// CreateHotspotTool adds a hotspot to a scene.
type CreateHotspotTool struct{ base }

// NewCreateHotspotTool creates a hotspot creation tool.
func NewCreateHotspotTool(p *editor.Project) *CreateHotspotTool {
	return &CreateHotspotTool{base{p}}
}

// Name returns the tool name
func (t *CreateHotspotTool) Name() string { return "create_hotspot" }

// Description returns the tool description
func (t *CreateHotspotTool) Description() string {
	return "Create a new interactive hotspot in a scene"
}

// Category returns the tool category
func (t *CreateHotspotTool) Category() string { return CategoryHotspots }

// RequiresConfirmation returns true
func (t *CreateHotspotTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateHotspotTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":     str("ID of the scene to add hotspot to"),
		"id":           str("Unique hotspot ID (lowercase, underscores)"),
		"name":         str("Display name for the hotspot"),
		"type":         enum("Type of hotspot", HotspotTypes...),
		"x":            integer("X position"),
		"y":            integer("Y position"),
		"width":        integer("Width in pixels"),
		"height":       integer("Height in pixels"),
		"target_scene": str("Target scene ID for exit hotspots"),
		"dialog_id":    str("Dialog ID for NPC hotspots"),
		"examine_text": str("Text shown when examining the hotspot"),
	}, "scene_id", "id", "name", "type", "x", "y", "width", "height")
}

// Execute creates the hotspot
func (t *CreateHotspotTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID     string  `json:"scene_id"`
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Type        string  `json:"type"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		Width       float64 `json:"width"`
		Height      float64 `json:"height"`
		TargetScene string  `json:"target_scene"`
		DialogID    string  `json:"dialog_id"`
		ExamineText string  `json:"examine_text"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}
	if before.Hotspot(params.ID) >= 0 {
		return core.Failuref("Hotspot '%s' already exists in scene '%s'", params.ID, before.ID), nil
	}
	if params.Type == "exit" && params.TargetScene != "" {
		if _, exists := t.project.Scene(params.TargetScene); !exists {
			return core.Failuref("Target scene not found: %s", params.TargetScene), nil
		}
	}

	after := before.Clone()
	after.Hotspots = append(after.Hotspots, editor.Hotspot{
		ID:          params.ID,
		Name:        params.Name,
		Type:        params.Type,
		X:           params.X,
		Y:           params.Y,
		W:           params.Width,
		H:           params.Height,
		TargetScene: params.TargetScene,
		DialogID:    params.DialogID,
		ExamineText: params.ExamineText,
	})

	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Create hotspot %s in %s", params.ID, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Hotspot '%s' created in scene '%s'", params.Name, before.ID), map[string]any{
		"scene_id": before.ID,
		"id":       params.ID,
		"type":     params.Type,
	}).WithCommand(cmd), nil
}

// ModifyHotspotTool changes an existing hotspot.
type ModifyHotspotTool struct{ base }

// NewModifyHotspotTool creates a hotspot modification tool.
func NewModifyHotspotTool(p *editor.Project) *ModifyHotspotTool {
	return &ModifyHotspotTool{base{p}}
}

// Name returns the tool name
func (t *ModifyHotspotTool) Name() string { return "modify_hotspot" }

// Description returns the tool description
func (t *ModifyHotspotTool) Description() string { return "Modify properties of an existing hotspot" }

// Category returns the tool category
func (t *ModifyHotspotTool) Category() string { return CategoryHotspots }

// Parameters returns the tool parameter schema
func (t *ModifyHotspotTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":     str("ID of the scene containing the hotspot"),
		"hotspot_id":   str("ID of the hotspot to modify"),
		"name":         str("New display name (optional)"),
		"x":            integer("New X position"),
		"y":            integer("New Y position"),
		"width":        integer("New width"),
		"height":       integer("New height"),
		"target_scene": str("New target scene (for exits)"),
		"dialog_id":    str("New dialog ID (for NPCs)"),
		"examine_text": str("New examine text"),
	}, "scene_id", "hotspot_id")
}

// Execute applies the changes
func (t *ModifyHotspotTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID     string   `json:"scene_id"`
		HotspotID   string   `json:"hotspot_id"`
		Name        *string  `json:"name"`
		X           *float64 `json:"x"`
		Y           *float64 `json:"y"`
		Width       *float64 `json:"width"`
		Height      *float64 `json:"height"`
		TargetScene *string  `json:"target_scene"`
		DialogID    *string  `json:"dialog_id"`
		ExamineText *string  `json:"examine_text"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}
	i := before.Hotspot(params.HotspotID)
	if i < 0 {
		return core.Failuref("Hotspot not found: %s", params.HotspotID), nil
	}

	after := before.Clone()
	h := &after.Hotspots[i]
	var changes []string
	setString := func(field string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			changes = append(changes, field)
		}
	}
	setNumber := func(field string, src *float64, dst *float64) {
		if src != nil {
			*dst = *src
			changes = append(changes, field)
		}
	}
	setString("name", params.Name, &h.Name)
	setNumber("x", params.X, &h.X)
	setNumber("y", params.Y, &h.Y)
	setNumber("width", params.Width, &h.W)
	setNumber("height", params.Height, &h.H)
	setString("target_scene", params.TargetScene, &h.TargetScene)
	setString("dialog_id", params.DialogID, &h.DialogID)
	setString("examine_text", params.ExamineText, &h.ExamineText)
	if len(changes) == 0 {
		return core.OK("No changes made"), nil
	}

	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Modify hotspot %s in %s", params.HotspotID, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	data := withDiff(map[string]any{"scene_id": before.ID, "hotspot_id": params.HotspotID, "changed": changes},
		"scenes/"+before.ID+".yaml", before.Hotspots[i], after.Hotspots[i])
	msg := fmt.Sprintf("Updated hotspot '%s': %s", params.HotspotID, strings.Join(changes, ", "))
	return core.OKWithData(msg, data).WithCommand(cmd), nil
}

// DeleteHotspotTool removes a hotspot from a scene.
type DeleteHotspotTool struct{ base }

// NewDeleteHotspotTool creates a hotspot deletion tool.
func NewDeleteHotspotTool(p *editor.Project) *DeleteHotspotTool {
	return &DeleteHotspotTool{base{p}}
}

// Name returns the tool name
func (t *DeleteHotspotTool) Name() string { return "delete_hotspot" }

// Description returns the tool description
func (t *DeleteHotspotTool) Description() string { return "Delete a hotspot from a scene" }

// Category returns the tool category
func (t *DeleteHotspotTool) Category() string { return CategoryHotspots }

// RequiresConfirmation returns true
func (t *DeleteHotspotTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *DeleteHotspotTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":   str("ID of the scene containing the hotspot"),
		"hotspot_id": str("ID of the hotspot to delete"),
	}, "scene_id", "hotspot_id")
}

// Execute deletes the hotspot
func (t *DeleteHotspotTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID   string `json:"scene_id"`
		HotspotID string `json:"hotspot_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}
	i := before.Hotspot(params.HotspotID)
	if i < 0 {
		return core.Failuref("Hotspot not found: %s", params.HotspotID), nil
	}

	after := before.Clone()
	name := after.Hotspots[i].Name
	after.Hotspots = append(after.Hotspots[:i], after.Hotspots[i+1:]...)

	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Delete hotspot %s from %s", params.HotspotID, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OK(fmt.Sprintf("Hotspot deleted: %s", name)).WithCommand(cmd), nil
}
