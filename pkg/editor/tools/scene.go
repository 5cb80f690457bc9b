package tools

import (
	"fmt"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

const defaultBackground = "backgrounds/default.png"

type walkAreaParams struct {
	MinX *float64 `json:"min_x"`
	MaxX *float64 `json:"max_x"`
	MinY *float64 `json:"min_y"`
	MaxY *float64 `json:"max_y"`
}

// merge overrides the fields of wa that were given. It reports whether any was.
func (p *walkAreaParams) merge(wa *editor.WalkArea) bool {
	if p == nil {
		return false
	}
	changed := false
	for _, f := range []struct {
		src *float64
		dst *float64
	}{{p.MinX, &wa.MinX}, {p.MaxX, &wa.MaxX}, {p.MinY, &wa.MinY}, {p.MaxY, &wa.MaxY}} {
		if f.src != nil {
			*f.dst = *f.src
			changed = true
		}
	}
	return changed
}

func walkAreaSchema(desc string) map[string]any {
	s := object(map[string]any{
		"min_x": map[string]any{"type": "integer"},
		"max_x": map[string]any{"type": "integer"},
		"min_y": map[string]any{"type": "integer"},
		"max_y": map[string]any{"type": "integer"},
	})
	s["description"] = desc
	return s
}

// ListScenesTool lists every scene of the project.
type ListScenesTool struct{ base }

// NewListScenesTool creates a scene listing tool.
func NewListScenesTool(p *editor.Project) *ListScenesTool {
	return &ListScenesTool{base{p}}
}

// Name returns the tool name
func (t *ListScenesTool) Name() string { return "list_scenes" }

// Description returns the tool description
func (t *ListScenesTool) Description() string {
	return "List all scenes in the game with their properties"
}

// Category returns the tool category
func (t *ListScenesTool) Category() string { return CategoryScenes }

// Parameters returns the tool parameter schema
func (t *ListScenesTool) Parameters() map[string]any { return object(nil) }

// Execute lists the scenes
func (t *ListScenesTool) Execute(args map[string]any) (core.ToolResult, error) {
	scenes := t.project.Scenes()
	list := make([]map[string]any, 0, len(scenes))
	for _, s := range scenes {
		list = append(list, map[string]any{
			"id":            s.ID,
			"name":          s.Name,
			"background":    s.Background,
			"hotspot_count": len(s.Hotspots),
			"actor_count":   len(s.Actors),
		})
	}
	if len(list) == 0 {
		return core.OKWithData("No scenes found.", list), nil
	}
	return core.OKWithData(fmt.Sprintf("Found %d scenes.", len(list)), list), nil
}

// GetSceneTool returns one scene in full.
type GetSceneTool struct{ base }

// NewGetSceneTool creates a scene lookup tool.
func NewGetSceneTool(p *editor.Project) *GetSceneTool {
	return &GetSceneTool{base{p}}
}

// Name returns the tool name
func (t *GetSceneTool) Name() string { return "get_scene" }

// Description returns the tool description
func (t *GetSceneTool) Description() string {
	return "Get detailed information about a specific scene"
}

// Category returns the tool category
func (t *GetSceneTool) Category() string { return CategoryScenes }

// Parameters returns the tool parameter schema
func (t *GetSceneTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id": str("The ID of the scene to get"),
	}, "scene_id")
}

// Execute looks the scene up
func (t *GetSceneTool) Execute(args map[string]any) (core.ToolResult, error) {
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
	return core.OKWithData("Scene found: "+s.Name, s), nil
}

// CreateSceneTool adds a new scene.
type CreateSceneTool struct{ base }

// NewCreateSceneTool creates a scene creation tool.
func NewCreateSceneTool(p *editor.Project) *CreateSceneTool {
	return &CreateSceneTool{base{p}}
}

// Name returns the tool name
func (t *CreateSceneTool) Name() string { return "create_scene" }

// Description returns the tool description
func (t *CreateSceneTool) Description() string { return "Create a new scene in the game" }

// Category returns the tool category
func (t *CreateSceneTool) Category() string { return CategoryScenes }

// RequiresConfirmation returns true
func (t *CreateSceneTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateSceneTool) Parameters() map[string]any {
	return object(map[string]any{
		"id":         str("Unique scene ID (lowercase, no spaces)"),
		"name":       str("Display name for the scene"),
		"background": str("Background image path (e.g., 'backgrounds/tavern.png')"),
		"walk_area":  walkAreaSchema("Walkable area bounds"),
	}, "id", "name")
}

// Execute creates the scene
func (t *CreateSceneTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		Background string          `json:"background"`
		WalkArea   *walkAreaParams `json:"walk_area"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.ID == "" || params.Name == "" {
		return core.Failure("id and name are required"), nil
	}
	if _, exists := t.project.Scene(params.ID); exists {
		return core.Failuref("Scene with id '%s' already exists", params.ID), nil
	}

	s := editor.Scene{
		ID:          params.ID,
		Name:        params.Name,
		Background:  params.Background,
		WalkArea:    editor.DefaultWalkArea,
		PlayerSpawn: editor.DefaultPlayerSpawn,
	}
	if s.Background == "" {
		s.Background = defaultBackground
	}
	params.WalkArea.merge(&s.WalkArea)

	cmd, err := apply(t.project, t.project.SceneChange(nil, &s, "Create scene "+s.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData("Scene created: "+s.Name, map[string]any{
		"id":   s.ID,
		"name": s.Name,
	}).WithCommand(cmd), nil
}

// ModifySceneTool changes scene properties.
type ModifySceneTool struct{ base }

// NewModifySceneTool creates a scene modification tool.
func NewModifySceneTool(p *editor.Project) *ModifySceneTool {
	return &ModifySceneTool{base{p}}
}

// Name returns the tool name
func (t *ModifySceneTool) Name() string { return "modify_scene" }

// Description returns the tool description
func (t *ModifySceneTool) Description() string { return "Modify properties of an existing scene" }

// Category returns the tool category
func (t *ModifySceneTool) Category() string { return CategoryScenes }

// Parameters returns the tool parameter schema
func (t *ModifySceneTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":   str("ID of scene to modify"),
		"name":       str("New display name (optional)"),
		"background": str("New background image (optional)"),
		"walk_area":  walkAreaSchema("New walk area bounds (optional)"),
	}, "scene_id")
}

// Execute applies the changes
func (t *ModifySceneTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID    string          `json:"scene_id"`
		Name       *string         `json:"name"`
		Background *string         `json:"background"`
		WalkArea   *walkAreaParams `json:"walk_area"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}

	after := before.Clone()
	var changes []string
	if params.Name != nil {
		after.Name = *params.Name
		changes = append(changes, "name")
	}
	if params.Background != nil {
		after.Background = *params.Background
		changes = append(changes, "background")
	}
	if params.WalkArea.merge(&after.WalkArea) {
		changes = append(changes, "walk_area")
	}
	if len(changes) == 0 {
		return core.OK("No changes made"), nil
	}

	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, "Modify scene "+before.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	data := withDiff(map[string]any{"scene_id": before.ID, "changed": changes}, "scenes/"+before.ID+".yaml", before, after)
	msg := fmt.Sprintf("Updated scene '%s': %s", before.ID, strings.Join(changes, ", "))
	return core.OKWithData(msg, data).WithCommand(cmd), nil
}
