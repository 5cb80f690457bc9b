package tools

import (
	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// GetEditorContextTool reports what the user has selected.
type GetEditorContextTool struct{ base }

// NewGetEditorContextTool creates a context tool.
func NewGetEditorContextTool(p *editor.Project) *GetEditorContextTool {
	return &GetEditorContextTool{base{p}}
}

// Name returns the tool name
func (t *GetEditorContextTool) Name() string { return "get_editor_context" }

// Description returns the tool description
func (t *GetEditorContextTool) Description() string {
	return "Get current editor context: selected scene, actor, and other state"
}

// Category returns the tool category
func (t *GetEditorContextTool) Category() string { return CategoryContext }

// Parameters returns the tool parameter schema
func (t *GetEditorContextTool) Parameters() map[string]any { return object(nil) }

// nullable maps "" to a JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Execute reports the selection
func (t *GetEditorContextTool) Execute(args map[string]any) (core.ToolResult, error) {
	sel := t.project.Selection()
	scenes := t.project.Scenes()
	ids := make([]string, 0, len(scenes))
	for _, s := range scenes {
		ids = append(ids, s.ID)
	}

	msg := "Current context: "
	switch {
	case sel.Scene == "" && sel.Actor == "":
		msg += "nothing selected"
	case sel.Actor == "":
		msg += "scene=" + sel.Scene
	case sel.Scene == "":
		msg += "actor=" + sel.Actor
	default:
		msg += "scene=" + sel.Scene + ", actor=" + sel.Actor
	}

	return core.OKWithData(msg, map[string]any{
		"current_scene":    nullable(sel.Scene),
		"current_level":    nullable(sel.Level),
		"selected_actor":   nullable(sel.Actor),
		"available_scenes": ids,
		"recent_actions":   t.project.RecentActions(),
	}), nil
}

// SelectSceneTool focuses a scene in the editor.
type SelectSceneTool struct{ base }

// NewSelectSceneTool creates a scene selection tool.
func NewSelectSceneTool(p *editor.Project) *SelectSceneTool {
	return &SelectSceneTool{base{p}}
}

// Name returns the tool name
func (t *SelectSceneTool) Name() string { return "select_scene" }

// Description returns the tool description
func (t *SelectSceneTool) Description() string { return "Select a scene in the editor viewport" }

// Category returns the tool category
func (t *SelectSceneTool) Category() string { return CategoryContext }

// Parameters returns the tool parameter schema
func (t *SelectSceneTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id": str("ID of the scene to select"),
	}, "scene_id")
}

// Execute selects the scene and clears the actor selection
func (t *SelectSceneTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID string `json:"scene_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.SceneID == "" {
		return core.Failure("scene_id is required"), nil
	}
	s, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}
	t.project.Select(editor.Selection{Scene: s.ID})
	return core.OKWithData("Selected scene '"+s.Name+"'", map[string]any{
		"scene_id":   s.ID,
		"scene_name": s.Name,
	}), nil
}

// SelectActorTool focuses an actor of the current scene.
type SelectActorTool struct{ base }

// NewSelectActorTool creates an actor selection tool.
func NewSelectActorTool(p *editor.Project) *SelectActorTool {
	return &SelectActorTool{base{p}}
}

// Name returns the tool name
func (t *SelectActorTool) Name() string { return "select_actor" }

// Description returns the tool description
func (t *SelectActorTool) Description() string { return "Select an actor in the current scene" }

// Category returns the tool category
func (t *SelectActorTool) Category() string { return CategoryContext }

// Parameters returns the tool parameter schema
func (t *SelectActorTool) Parameters() map[string]any {
	return object(map[string]any{
		"actor_name": str("Name of the actor to select"),
	}, "actor_name")
}

// Execute selects the actor
func (t *SelectActorTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ActorName string `json:"actor_name"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.ActorName == "" {
		return core.Failure("actor_name is required"), nil
	}
	sel := t.project.Selection()
	if sel.Scene != "" {
		if _, _, fail, ok := t.actor(sel.Scene, params.ActorName); !ok {
			return fail, nil
		}
	}
	sel.Actor = params.ActorName
	t.project.Select(sel)
	return core.OKWithData("Selected actor '"+params.ActorName+"'", map[string]any{
		"actor_name": params.ActorName,
		"scene_id":   sel.Scene,
	}), nil
}
