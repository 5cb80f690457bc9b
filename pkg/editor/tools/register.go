package tools

import (
	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// RegisterAll registers the complete editor tool set on registry.
func RegisterAll(registry *core.Registry, p *editor.Project, history *editor.UndoStack) {
	// Scenes
	registry.Register(NewListScenesTool(p))
	registry.Register(NewGetSceneTool(p))
	registry.Register(NewCreateSceneTool(p))
	registry.Register(NewModifySceneTool(p))

	// Hotspots
	registry.Register(NewListHotspotsTool(p))
	registry.Register(NewCreateHotspotTool(p))
	registry.Register(NewModifyHotspotTool(p))
	registry.Register(NewDeleteHotspotTool(p))

	// Actors
	registry.Register(NewListActorsTool(p))
	registry.Register(NewGetActorTool(p))
	registry.Register(NewCreateActorTool(p))
	registry.Register(NewModifyActorTool(p))
	registry.Register(NewDeleteActorTool(p))
	registry.Register(NewAddComponentTool(p))

	// Dialogs
	registry.Register(NewListDialogsTool(p))
	registry.Register(NewGetDialogTool(p))
	registry.Register(NewCreateDialogTool(p))
	registry.Register(NewAddDialogNodeTool(p))

	// Quests
	registry.Register(NewListQuestsTool(p))
	registry.Register(NewGetQuestTool(p))
	registry.Register(NewCreateQuestTool(p))
	registry.Register(NewAddQuestObjectiveTool(p))
	registry.Register(NewLinkQuestToNPCTool(p))

	// Items
	registry.Register(NewListItemsTool(p))
	registry.Register(NewGetItemTool(p))
	registry.Register(NewCreateItemTool(p))
	registry.Register(NewModifyItemTool(p))

	// World
	registry.Register(NewListLevelsTool(p))
	registry.Register(NewCreateLevelTool(p))
	registry.Register(NewAddSceneToLevelTool(p))
	registry.Register(NewSetStartSceneTool(p))
	registry.Register(NewGetWorldInfoTool(p))

	// Context
	registry.Register(NewGetEditorContextTool(p))
	registry.Register(NewSelectSceneTool(p))
	registry.Register(NewSelectActorTool(p))

	// System
	registry.Register(NewExecuteCommandTool(registry))
	registry.Register(NewListCommandsTool(registry))
	registry.Register(NewUndoTool(p, history))
	registry.Register(NewRedoTool(p, history))
}
