package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// ListLevelsTool lists the levels of the world.
type ListLevelsTool struct{ base }

// NewListLevelsTool creates a level listing tool.
func NewListLevelsTool(p *editor.Project) *ListLevelsTool {
	return &ListLevelsTool{base{p}}
}

// Name returns the tool name
func (t *ListLevelsTool) Name() string { return "list_levels" }

// Description returns the tool description
func (t *ListLevelsTool) Description() string { return "List all levels in the game world" }

// Category returns the tool category
func (t *ListLevelsTool) Category() string { return CategoryWorld }

// Parameters returns the tool parameter schema
func (t *ListLevelsTool) Parameters() map[string]any { return object(nil) }

// Execute lists the levels
func (t *ListLevelsTool) Execute(args map[string]any) (core.ToolResult, error) {
	levels := t.project.Levels()
	if len(levels) == 0 {
		return core.OKWithData("No levels found in the world", map[string]any{"count": 0}), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d levels:\n", len(levels))
	list := make([]map[string]any, 0, len(levels))
	for _, l := range levels {
		fmt.Fprintf(&b, "- %s (%s): %d scenes\n", l.Name, l.ID, len(l.Scenes))
		list = append(list, map[string]any{
			"id":          l.ID,
			"name":        l.Name,
			"description": l.Description,
			"scene_count": len(l.Scenes),
			"scenes":      l.Scenes,
		})
	}
	return core.OKWithData(b.String(), map[string]any{"levels": list, "count": len(list)}), nil
}

// CreateLevelTool adds a level to the world.
type CreateLevelTool struct{ base }

// NewCreateLevelTool creates a level creation tool.
func NewCreateLevelTool(p *editor.Project) *CreateLevelTool {
	return &CreateLevelTool{base{p}}
}

// Name returns the tool name
func (t *CreateLevelTool) Name() string { return "create_level" }

// Description returns the tool description
func (t *CreateLevelTool) Description() string {
	return "Create a new level (chapter/area) in the game world. Levels contain multiple scenes."
}

// Category returns the tool category
func (t *CreateLevelTool) Category() string { return CategoryWorld }

// RequiresConfirmation returns true
func (t *CreateLevelTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateLevelTool) Parameters() map[string]any {
	return object(map[string]any{
		"id":          str("Unique level ID (e.g., 'chapter_1', 'forest_area')"),
		"name":        str("Display name for the level"),
		"description": str("Brief description of the level/area"),
		"music_track": str("Background music for this level (optional)"),
	}, "id", "name")
}

// Execute creates the level
func (t *CreateLevelTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		MusicTrack  string `json:"music_track"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.ID == "" || params.Name == "" {
		return core.Failure("id and name are required"), nil
	}
	if _, exists := t.project.Level(params.ID); exists {
		return core.Failuref("Level with ID '%s' already exists", params.ID), nil
	}

	l := editor.Level{ID: params.ID, Name: params.Name, Description: params.Description, MusicTrack: params.MusicTrack}
	cmd, err := apply(t.project, t.project.LevelChange(nil, &l, "Create level "+l.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Level created: %s (ID: %s)", l.Name, l.ID), map[string]any{
		"id":          l.ID,
		"name":        l.Name,
		"description": l.Description,
	}).WithCommand(cmd), nil
}

// AddSceneToLevelTool places a scene in a level.
type AddSceneToLevelTool struct{ base }

// NewAddSceneToLevelTool creates a level membership tool.
func NewAddSceneToLevelTool(p *editor.Project) *AddSceneToLevelTool {
	return &AddSceneToLevelTool{base{p}}
}

// Name returns the tool name
func (t *AddSceneToLevelTool) Name() string { return "add_scene_to_level" }

// Description returns the tool description
func (t *AddSceneToLevelTool) Description() string { return "Add an existing scene to a level" }

// Category returns the tool category
func (t *AddSceneToLevelTool) Category() string { return CategoryWorld }

// RequiresConfirmation returns true
func (t *AddSceneToLevelTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *AddSceneToLevelTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id": str("ID of the scene to add"),
		"level_id": str("ID of the level to add the scene to (optional, uses active level if not specified)"),
	}, "scene_id")
}

// Execute adds the scene to the level
func (t *AddSceneToLevelTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID string `json:"scene_id"`
		LevelID string `json:"level_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.LevelID == "" {
		params.LevelID = t.project.Selection().Level
	}
	if params.LevelID == "" {
		return core.Failure("No level specified and no active level"), nil
	}
	if _, fail, ok := t.scene(params.SceneID); !ok {
		return fail, nil
	}
	before, ok := t.project.Level(params.LevelID)
	if !ok {
		return core.Failuref("Level '%s' not found", params.LevelID), nil
	}
	if slices.Contains(before.Scenes, params.SceneID) {
		return core.Failuref("Scene '%s' is already in level '%s'", params.SceneID, params.LevelID), nil
	}

	after := before.Clone()
	after.Scenes = append(after.Scenes, params.SceneID)
	if after.StartScene == "" {
		after.StartScene = params.SceneID
	}
	desc := fmt.Sprintf("Add scene %s to level %s", params.SceneID, params.LevelID)
	cmd, err := apply(t.project, t.project.LevelChange(&before, &after, desc))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Scene '%s' added to level '%s'", params.SceneID, params.LevelID), map[string]any{
		"scene_id": params.SceneID,
		"level_id": params.LevelID,
	}).WithCommand(cmd), nil
}

// SetStartSceneTool sets where the game begins.
type SetStartSceneTool struct{ base }

// NewSetStartSceneTool creates a start scene tool.
func NewSetStartSceneTool(p *editor.Project) *SetStartSceneTool {
	return &SetStartSceneTool{base{p}}
}

// Name returns the tool name
func (t *SetStartSceneTool) Name() string { return "set_start_scene" }

// Description returns the tool description
func (t *SetStartSceneTool) Description() string {
	return "Set the starting scene and level for the game"
}

// Category returns the tool category
func (t *SetStartSceneTool) Category() string { return CategoryWorld }

// RequiresConfirmation returns true
func (t *SetStartSceneTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *SetStartSceneTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id": str("ID of the starting scene"),
		"level_id": str("ID of the starting level"),
	}, "scene_id", "level_id")
}

// Execute sets the start scene
func (t *SetStartSceneTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID string `json:"scene_id"`
		LevelID string `json:"level_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	level, ok := t.project.Level(params.LevelID)
	if !ok {
		return core.Failuref("Level '%s' not found", params.LevelID), nil
	}
	if !slices.Contains(level.Scenes, params.SceneID) {
		return core.Failuref("Scene '%s' not found in level '%s'", params.SceneID, params.LevelID), nil
	}

	before := t.project.World()
	after := editor.World{StartLevel: params.LevelID, StartScene: params.SceneID}
	desc := fmt.Sprintf("Set start scene %s in %s", params.SceneID, params.LevelID)
	cmd, err := apply(t.project, t.project.WorldChange(before, after, desc))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Start scene set to '%s' in level '%s'", params.SceneID, params.LevelID), map[string]any{
		"start_scene_id": params.SceneID,
		"start_level_id": params.LevelID,
	}).WithCommand(cmd), nil
}

// GetWorldInfoTool summarizes the whole world structure.
type GetWorldInfoTool struct{ base }

// NewGetWorldInfoTool creates a world summary tool.
func NewGetWorldInfoTool(p *editor.Project) *GetWorldInfoTool {
	return &GetWorldInfoTool{base{p}}
}

// Name returns the tool name
func (t *GetWorldInfoTool) Name() string { return "get_world_info" }

// Description returns the tool description
func (t *GetWorldInfoTool) Description() string {
	return "Get complete information about the game world structure including all levels and scenes"
}

// Category returns the tool category
func (t *GetWorldInfoTool) Category() string { return CategoryWorld }

// Parameters returns the tool parameter schema
func (t *GetWorldInfoTool) Parameters() map[string]any { return object(nil) }

// Execute builds the summary
func (t *GetWorldInfoTool) Execute(args map[string]any) (core.ToolResult, error) {
	world := t.project.World()
	levels := t.project.Levels()
	scenes := t.project.Scenes()
	npcs := 0
	for _, s := range scenes {
		for _, a := range s.Actors {
			if a.Type == "npc" {
				npcs++
			}
		}
	}
	items, dialogs, quests := len(t.project.Items()), len(t.project.Dialogs()), len(t.project.Quests())

	levelInfo := make([]map[string]any, 0, len(levels))
	for _, l := range levels {
		sceneInfo := []map[string]any{}
		for _, id := range l.Scenes {
			if s, ok := t.project.Scene(id); ok {
				sceneInfo = append(sceneInfo, map[string]any{
					"id":            s.ID,
					"name":          s.Name,
					"hotspot_count": len(s.Hotspots),
				})
			}
		}
		levelInfo = append(levelInfo, map[string]any{
			"id":          l.ID,
			"name":        l.Name,
			"description": l.Description,
			"scenes":      sceneInfo,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "World: %s\n", t.project.Name())
	fmt.Fprintf(&b, "Start: %s in %s\n\n", world.StartScene, world.StartLevel)
	fmt.Fprintf(&b, "Levels: %d\nScenes: %d\nNPCs: %d\nItems: %d\nDialogs: %d\nQuests: %d\n",
		len(levels), len(scenes), npcs, items, dialogs, quests)

	return core.OKWithData(b.String(), map[string]any{
		"world_name":     t.project.Name(),
		"start_level_id": world.StartLevel,
		"start_scene_id": world.StartScene,
		"levels":         levelInfo,
		"stats": map[string]any{
			"level_count":  len(levels),
			"scene_count":  len(scenes),
			"npc_count":    npcs,
			"item_count":   items,
			"dialog_count": dialogs,
			"quest_count":  quests,
		},
	}), nil
}
