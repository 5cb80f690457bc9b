package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// ActorTypes are the kinds of actor create_actor accepts.
var ActorTypes = []string{"interactive", "npc", "item", "prop", "sprite"}

// ComponentTypes are the component kinds add_component accepts.
var ComponentTypes = []string{"sprite", "animation", "collision", "movement", "dialog", "inventory"}

// defaultActorSize is the footprint of a new actor when none is given.
var defaultActorSize = map[string][2]float64{
	"interactive": {50, 50},
	"npc":         {32, 64},
	"item":        {32, 32},
	"prop":        {64, 64},
	"sprite":      {64, 64},
}

func (b base) actor(sceneID, name string) (editor.Scene, int, core.ToolResult, bool) {
	s, fail, ok := b.scene(sceneID)
	if !ok {
		return s, -1, fail, false
	}
	i := s.Actor(name)
	if i < 0 {
		return s, -1, core.Failuref("Actor not found: %s", name), false
	}
	return s, i, core.ToolResult{}, true
}

// ListActorsTool lists the actors of a scene.
type ListActorsTool struct{ base }

// NewListActorsTool creates an actor listing tool.
func NewListActorsTool(p *editor.Project) *ListActorsTool {
	return &ListActorsTool{base{p}}
}

// Name returns the tool name
func (t *ListActorsTool) Name() string { return "list_actors" }

// Description returns the tool description
func (t *ListActorsTool) Description() string {
	return "List all actors in a scene, optionally filtered by type"
}

// Category returns the tool category
func (t *ListActorsTool) Category() string { return CategoryActors }

// Parameters returns the tool parameter schema
func (t *ListActorsTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":    str("ID of the scene to list actors from"),
		"type_filter": enum("Filter by actor type (default: all)", "all", "interactive", "character", "npc", "environment", "item", "sprite"),
	}, "scene_id")
}

// matchesFilter maps the filter vocabulary onto actor types.
func matchesFilter(actorType, filter string) bool {
	switch filter {
	case "", "all":
		return true
	case "character":
		return actorType == "npc"
	case "environment":
		return actorType == "prop" || actorType == "sprite"
	default:
		return actorType == filter
	}
}

// Execute lists the actors
func (t *ListActorsTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID    string `json:"scene_id"`
		TypeFilter string `json:"type_filter"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	s, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}

	list := []map[string]any{}
	for _, a := range s.Actors {
		if !matchesFilter(a.Type, params.TypeFilter) {
			continue
		}
		list = append(list, map[string]any{
			"name":    a.Name,
			"type":    a.Type,
			"x":       a.X,
			"y":       a.Y,
			"visible": a.Visible,
		})
	}
	msg := fmt.Sprintf("Found %d actors in scene '%s'", len(list), s.ID)
	if params.TypeFilter != "" && params.TypeFilter != "all" {
		msg += " (filter: " + params.TypeFilter + ")"
	}
	return core.OKWithData(msg, list), nil
}

// GetActorTool returns one actor in full.
type GetActorTool struct{ base }

// NewGetActorTool creates an actor lookup tool.
func NewGetActorTool(p *editor.Project) *GetActorTool {
	return &GetActorTool{base{p}}
}

// Name returns the tool name
func (t *GetActorTool) Name() string { return "get_actor" }

// Description returns the tool description
func (t *GetActorTool) Description() string {
	return "Get detailed information about a specific actor"
}

// Category returns the tool category
func (t *GetActorTool) Category() string { return CategoryActors }

// Parameters returns the tool parameter schema
func (t *GetActorTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":   str("ID of the scene containing the actor"),
		"actor_name": str("Name of the actor to get"),
	}, "scene_id", "actor_name")
}

// Execute looks the actor up
func (t *GetActorTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID   string `json:"scene_id"`
		ActorName string `json:"actor_name"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	s, i, fail, ok := t.actor(params.SceneID, params.ActorName)
	if !ok {
		return fail, nil
	}
	return core.OKWithData("Actor found: "+s.Actors[i].Name, s.Actors[i]), nil
}

// CreateActorTool places a new actor in a scene.
type CreateActorTool struct{ base }

// NewCreateActorTool creates an actor creation tool.
func NewCreateActorTool(p *editor.Project) *CreateActorTool {
	return &CreateActorTool{base{p}}
}

// Name returns the tool name
func (t *CreateActorTool) Name() string { return "create_actor" }

// Description returns the tool description
func (t *CreateActorTool) Description() string {
	return "Create a new actor in a scene (interactive, npc, item, prop, sprite)"
}

// Category returns the tool category
func (t *CreateActorTool) Category() string { return CategoryActors }

// RequiresConfirmation returns true
func (t *CreateActorTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateActorTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":         str("ID of the scene to add actor to"),
		"name":             str("Unique name for the actor"),
		"type":             enum("Type of actor to create", ActorTypes...),
		"x":                number("X position"),
		"y":                number("Y position"),
		"width":            number("Width (for interactive areas)"),
		"height":           number("Height (for interactive areas)"),
		"interaction_text": str("Text shown when hovering (for interactive actors)"),
		"dialog_id":        str("Dialog ID for NPC actors"),
		"sprite":           str("Sprite/texture path for visual actors"),
		"item_id":          str("Item ID for item actors"),
	}, "scene_id", "name", "type", "x", "y")
}

// Execute creates the actor
func (t *CreateActorTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID         string   `json:"scene_id"`
		Name            string   `json:"name"`
		Type            string   `json:"type"`
		X               float64  `json:"x"`
		Y               float64  `json:"y"`
		Width           *float64 `json:"width"`
		Height          *float64 `json:"height"`
		InteractionText string   `json:"interaction_text"`
		DialogID        string   `json:"dialog_id"`
		Sprite          string   `json:"sprite"`
		ItemID          string   `json:"item_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	size, known := defaultActorSize[params.Type]
	if !known {
		return core.Failuref("Unknown actor type: %s", params.Type), nil
	}
	before, fail, ok := t.scene(params.SceneID)
	if !ok {
		return fail, nil
	}
	if before.Actor(params.Name) >= 0 {
		return core.Failuref("Actor named '%s' already exists", params.Name), nil
	}

	a := editor.Actor{
		Name:            params.Name,
		Type:            params.Type,
		X:               params.X,
		Y:               params.Y,
		Width:           size[0],
		Height:          size[1],
		Sprite:          params.Sprite,
		DialogID:        params.DialogID,
		ItemID:          params.ItemID,
		InteractionText: params.InteractionText,
		Visible:         true,
		Active:          true,
	}
	if params.Width != nil {
		a.Width = *params.Width
	}
	if params.Height != nil {
		a.Height = *params.Height
	}

	after := before.Clone()
	after.Actors = append(after.Actors, a)
	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Create actor %s in %s", a.Name, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Actor created: %s (%s)", a.Name, a.Type), map[string]any{
		"name":     a.Name,
		"type":     a.Type,
		"scene_id": before.ID,
	}).WithCommand(cmd), nil
}

// ModifyActorTool changes an existing actor.
type ModifyActorTool struct{ base }

// NewModifyActorTool creates an actor modification tool.
func NewModifyActorTool(p *editor.Project) *ModifyActorTool {
	return &ModifyActorTool{base{p}}
}

// Name returns the tool name
func (t *ModifyActorTool) Name() string { return "modify_actor" }

// Description returns the tool description
func (t *ModifyActorTool) Description() string { return "Modify properties of an existing actor" }

// Category returns the tool category
func (t *ModifyActorTool) Category() string { return CategoryActors }

// Parameters returns the tool parameter schema
func (t *ModifyActorTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":   str("ID of the scene containing the actor"),
		"actor_name": str("Name of the actor to modify"),
		"new_name":   str("New name for the actor (optional)"),
		"x":          number("New X position (optional)"),
		"y":          number("New Y position (optional)"),
		"visible":    boolean("Set visibility (optional)"),
		"active":     boolean("Set active state (optional)"),
	}, "scene_id", "actor_name")
}

// Execute applies the changes
func (t *ModifyActorTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID   string   `json:"scene_id"`
		ActorName string   `json:"actor_name"`
		NewName   *string  `json:"new_name"`
		X         *float64 `json:"x"`
		Y         *float64 `json:"y"`
		Visible   *bool    `json:"visible"`
		Active    *bool    `json:"active"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, i, fail, ok := t.actor(params.SceneID, params.ActorName)
	if !ok {
		return fail, nil
	}

	after := before.Clone()
	a := &after.Actors[i]
	var changes []string
	if params.NewName != nil && *params.NewName != a.Name {
		if before.Actor(*params.NewName) >= 0 {
			return core.Failuref("Actor named '%s' already exists", *params.NewName), nil
		}
		a.Name = *params.NewName
		changes = append(changes, "name")
	}
	if params.X != nil {
		a.X = *params.X
		changes = append(changes, "x")
	}
	if params.Y != nil {
		a.Y = *params.Y
		changes = append(changes, "y")
	}
	if params.Visible != nil {
		a.Visible = *params.Visible
		changes = append(changes, "visible")
	}
	if params.Active != nil {
		a.Active = *params.Active
		changes = append(changes, "active")
	}
	if len(changes) == 0 {
		return core.OK("No changes made"), nil
	}

	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Modify actor %s in %s", params.ActorName, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	data := withDiff(map[string]any{"scene_id": before.ID, "actor_name": a.Name, "changed": changes},
		"scenes/"+before.ID+".yaml", before.Actors[i], after.Actors[i])
	msg := fmt.Sprintf("Updated actor '%s': %s", params.ActorName, strings.Join(changes, ", "))
	return core.OKWithData(msg, data).WithCommand(cmd), nil
}

// DeleteActorTool removes an actor from a scene.
type DeleteActorTool struct{ base }

// NewDeleteActorTool creates an actor deletion tool.
func NewDeleteActorTool(p *editor.Project) *DeleteActorTool {
	return &DeleteActorTool{base{p}}
}

// Name returns the tool name
func (t *DeleteActorTool) Name() string { return "delete_actor" }

// Description returns the tool description
func (t *DeleteActorTool) Description() string { return "Delete an actor from a scene" }

// Category returns the tool category
func (t *DeleteActorTool) Category() string { return CategoryActors }

// RequiresConfirmation returns true
func (t *DeleteActorTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *DeleteActorTool) Parameters() map[string]any {
	return object(map[string]any{
		"scene_id":   str("ID of the scene containing the actor"),
		"actor_name": str("Name of the actor to delete"),
	}, "scene_id", "actor_name")
}

// Execute deletes the actor
func (t *DeleteActorTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID   string `json:"scene_id"`
		ActorName string `json:"actor_name"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, i, fail, ok := t.actor(params.SceneID, params.ActorName)
	if !ok {
		return fail, nil
	}

	after := before.Clone()
	after.Actors = slices.Delete(after.Actors, i, i+1)
	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Delete actor %s from %s", params.ActorName, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OK("Actor deleted: " + params.ActorName).WithCommand(cmd), nil
}

// AddComponentTool attaches a component to an actor.
type AddComponentTool struct{ base }

// NewAddComponentTool creates a component tool.
func NewAddComponentTool(p *editor.Project) *AddComponentTool {
	return &AddComponentTool{base{p}}
}

// Name returns the tool name
func (t *AddComponentTool) Name() string { return "add_component" }

// Description returns the tool description
func (t *AddComponentTool) Description() string {
	return "Add a component to an existing actor (sprite, animation, collision, etc.)"
}

// Category returns the tool category
func (t *AddComponentTool) Category() string { return CategoryActors }

// Parameters returns the tool parameter schema
func (t *AddComponentTool) Parameters() map[string]any {
	properties := object(nil)
	properties["description"] = "Component-specific properties"
	return object(map[string]any{
		"scene_id":       str("ID of the scene containing the actor"),
		"actor_name":     str("Name of the actor to add component to"),
		"component_type": enum("Type of component to add", ComponentTypes...),
		"properties":     properties,
	}, "scene_id", "actor_name", "component_type")
}

// Execute adds the component
func (t *AddComponentTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		SceneID       string         `json:"scene_id"`
		ActorName     string         `json:"actor_name"`
		ComponentType string         `json:"component_type"`
		Properties    map[string]any `json:"properties"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, i, fail, ok := t.actor(params.SceneID, params.ActorName)
	if !ok {
		return fail, nil
	}
	has := slices.ContainsFunc(before.Actors[i].Components, func(c editor.Component) bool {
		return c.Type == params.ComponentType
	})
	if has {
		return core.Failuref("Actor '%s' already has a %s component", params.ActorName, params.ComponentType), nil
	}

	after := before.Clone()
	a := &after.Actors[i]
	a.Components = append(a.Components, editor.Component{Type: params.ComponentType, Properties: params.Properties})
	cmd, err := apply(t.project, t.project.SceneChange(&before, &after, fmt.Sprintf("Add %s component to %s", params.ComponentType, params.ActorName)))
	if err != nil {
		return core.ToolResult{}, err
	}
	data := withDiff(map[string]any{
		"actor_name":     params.ActorName,
		"component_type": params.ComponentType,
	}, "scenes/"+before.ID+".yaml", before.Actors[i], after.Actors[i])
	return core.OKWithData(fmt.Sprintf("Component '%s' added to actor '%s'", params.ComponentType, params.ActorName), data).WithCommand(cmd), nil
}
