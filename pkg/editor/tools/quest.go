package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// ListQuestsTool lists every quest.
type ListQuestsTool struct{ base }

// NewListQuestsTool creates a quest listing tool.
func NewListQuestsTool(p *editor.Project) *ListQuestsTool {
	return &ListQuestsTool{base{p}}
}

// Name returns the tool name
func (t *ListQuestsTool) Name() string { return "list_quests" }

// Description returns the tool description
func (t *ListQuestsTool) Description() string { return "List all quests in the game" }

// Category returns the tool category
func (t *ListQuestsTool) Category() string { return CategoryQuests }

// Parameters returns the tool parameter schema
func (t *ListQuestsTool) Parameters() map[string]any { return object(nil) }

// Execute lists the quests
func (t *ListQuestsTool) Execute(args map[string]any) (core.ToolResult, error) {
	quests := t.project.Quests()
	if len(quests) == 0 {
		return core.OKWithData("No quests found", map[string]any{"count": 0}), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d quests:\n", len(quests))
	list := make([]map[string]any, 0, len(quests))
	for _, q := range quests {
		fmt.Fprintf(&b, "- %s (%s): %d objectives\n", q.Title, q.ID, len(q.Objectives))
		list = append(list, map[string]any{
			"id":              q.ID,
			"title":           q.Title,
			"description":     q.Description,
			"objective_count": len(q.Objectives),
			"auto_start":      q.AutoStart,
		})
	}
	return core.OKWithData(b.String(), map[string]any{"count": len(list), "quests": list}), nil
}

// GetQuestTool returns one quest with its objectives.
type GetQuestTool struct{ base }

// NewGetQuestTool creates a quest lookup tool.
func NewGetQuestTool(p *editor.Project) *GetQuestTool {
	return &GetQuestTool{base{p}}
}

// Name returns the tool name
func (t *GetQuestTool) Name() string { return "get_quest" }

// Description returns the tool description
func (t *GetQuestTool) Description() string {
	return "Get detailed information about a specific quest including all objectives"
}

// Category returns the tool category
func (t *GetQuestTool) Category() string { return CategoryQuests }

// Parameters returns the tool parameter schema
func (t *GetQuestTool) Parameters() map[string]any {
	return object(map[string]any{
		"quest_id": str("ID of the quest to get"),
	}, "quest_id")
}

// Execute looks the quest up
func (t *GetQuestTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		QuestID string `json:"quest_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	q, ok := t.project.Quest(params.QuestID)
	if !ok {
		return core.Failuref("Quest not found: %s", params.QuestID), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Quest: %s\n%s\n", q.Title, q.Description)
	for _, o := range q.Objectives {
		fmt.Fprintf(&b, "- [%s] %s\n", o.Type, o.Description)
	}
	return core.OKWithData(b.String(), q), nil
}

// CreateQuestTool adds a new quest.
type CreateQuestTool struct{ base }

// NewCreateQuestTool creates a quest creation tool.
func NewCreateQuestTool(p *editor.Project) *CreateQuestTool {
	return &CreateQuestTool{base{p}}
}

// Name returns the tool name
func (t *CreateQuestTool) Name() string { return "create_quest" }

// Description returns the tool description
func (t *CreateQuestTool) Description() string {
	return "Create a new quest with title, description and optional objectives"
}

// Category returns the tool category
func (t *CreateQuestTool) Category() string { return CategoryQuests }

// RequiresConfirmation returns true
func (t *CreateQuestTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateQuestTool) Parameters() map[string]any {
	return object(map[string]any{
		"id":          str("Unique quest ID (e.g., 'find_key', 'save_princess')"),
		"title":       str("Display title for the quest"),
		"description": str("Full description of the quest"),
		"reward_item": str("Item ID to give as reward (optional)"),
		"reward_xp":   integer("XP reward amount (optional)"),
		"auto_start":  boolean("Start quest automatically at game start (default: false)"),
	}, "id", "title", "description")
}

// Execute creates the quest
func (t *CreateQuestTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		RewardItem  string `json:"reward_item"`
		RewardXP    int    `json:"reward_xp"`
		AutoStart   bool   `json:"auto_start"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.ID == "" || params.Title == "" || params.Description == "" {
		return core.Failure("id, title, and description are required"), nil
	}
	if _, exists := t.project.Quest(params.ID); exists {
		return core.Failuref("Quest with ID '%s' already exists", params.ID), nil
	}

	q := editor.Quest{
		ID:          params.ID,
		Title:       params.Title,
		Description: params.Description,
		RewardItem:  params.RewardItem,
		RewardXP:    params.RewardXP,
		AutoStart:   params.AutoStart,
	}
	cmd, err := apply(t.project, t.project.QuestChange(nil, &q, "Create quest "+q.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Quest created: %s (ID: %s)", q.Title, q.ID), map[string]any{
		"id":    q.ID,
		"title": q.Title,
	}).WithCommand(cmd), nil
}

// AddQuestObjectiveTool appends an objective to a quest.
type AddQuestObjectiveTool struct{ base }

// NewAddQuestObjectiveTool creates an objective tool.
func NewAddQuestObjectiveTool(p *editor.Project) *AddQuestObjectiveTool {
	return &AddQuestObjectiveTool{base{p}}
}

// Name returns the tool name
func (t *AddQuestObjectiveTool) Name() string { return "add_quest_objective" }

// Description returns the tool description
func (t *AddQuestObjectiveTool) Description() string {
	return "Add a new objective to an existing quest"
}

// Category returns the tool category
func (t *AddQuestObjectiveTool) Category() string { return CategoryQuests }

// RequiresConfirmation returns true
func (t *AddQuestObjectiveTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *AddQuestObjectiveTool) Parameters() map[string]any {
	return object(map[string]any{
		"quest_id":     str("ID of the quest to add objective to"),
		"objective_id": str("Unique ID for this objective within the quest"),
		"description":  str("Description shown to player"),
		"type": enum("Type of objective: talk (to NPC), collect (item), deliver (item to NPC), "+
			"goto (scene), examine (hotspot), kill (enemy), use (item on target)", editor.ObjectiveTypes...),
		"target_id":      str("ID of the target (NPC, item, scene, or hotspot depending on type)"),
		"required_count": integer("Number required to complete (default: 1)"),
		"optional":       boolean("Is this objective optional? (default: false)"),
	}, "quest_id", "objective_id", "description", "type", "target_id")
}

// Execute adds the objective
func (t *AddQuestObjectiveTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		QuestID       string `json:"quest_id"`
		ObjectiveID   string `json:"objective_id"`
		Description   string `json:"description"`
		Type          string `json:"type"`
		TargetID      string `json:"target_id"`
		RequiredCount *int   `json:"required_count"`
		Optional      bool   `json:"optional"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if !slices.Contains(editor.ObjectiveTypes, params.Type) {
		return core.Failuref("Unknown objective type: %s", params.Type), nil
	}
	before, ok := t.project.Quest(params.QuestID)
	if !ok {
		return core.Failuref("Quest not found: %s", params.QuestID), nil
	}
	exists := slices.ContainsFunc(before.Objectives, func(o editor.Objective) bool { return o.ID == params.ObjectiveID })
	if exists {
		return core.Failuref("Objective '%s' already exists in quest", params.ObjectiveID), nil
	}

	o := editor.Objective{
		ID:            params.ObjectiveID,
		Description:   params.Description,
		Type:          params.Type,
		TargetID:      params.TargetID,
		RequiredCount: 1,
		Optional:      params.Optional,
	}
	if params.RequiredCount != nil && *params.RequiredCount > 0 {
		o.RequiredCount = *params.RequiredCount
	}

	after := before.Clone()
	after.Objectives = append(after.Objectives, o)
	cmd, err := apply(t.project, t.project.QuestChange(&before, &after, fmt.Sprintf("Add objective %s to quest %s", o.ID, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData("Objective added: "+o.Description, map[string]any{
		"quest_id":     before.ID,
		"objective_id": o.ID,
		"type":         o.Type,
	}).WithCommand(cmd), nil
}

// LinkQuestToNPCTool makes an NPC actor the giver of a quest.
type LinkQuestToNPCTool struct{ base }

// NewLinkQuestToNPCTool creates a quest giver tool.
func NewLinkQuestToNPCTool(p *editor.Project) *LinkQuestToNPCTool {
	return &LinkQuestToNPCTool{base{p}}
}

// Name returns the tool name
func (t *LinkQuestToNPCTool) Name() string { return "link_quest_to_npc" }

// Description returns the tool description
func (t *LinkQuestToNPCTool) Description() string {
	return "Link a quest to an NPC so they become the quest giver"
}

// Category returns the tool category
func (t *LinkQuestToNPCTool) Category() string { return CategoryQuests }

// RequiresConfirmation returns true
func (t *LinkQuestToNPCTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *LinkQuestToNPCTool) Parameters() map[string]any {
	return object(map[string]any{
		"quest_id":  str("ID of the quest"),
		"npc_id":    str("Name of the NPC actor who gives the quest"),
		"dialog_id": str("Dialog ID to use for quest introduction (optional)"),
	}, "quest_id", "npc_id")
}

// findNPC returns the first scene holding an npc actor with the given name.
func (t *LinkQuestToNPCTool) findNPC(name string) (editor.Scene, int, bool) {
	for _, s := range t.project.Scenes() {
		if i := s.Actor(name); i >= 0 && s.Actors[i].Type == "npc" {
			return s, i, true
		}
	}
	return editor.Scene{}, -1, false
}

// Execute links the quest
func (t *LinkQuestToNPCTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		QuestID  string `json:"quest_id"`
		NPCID    string `json:"npc_id"`
		DialogID string `json:"dialog_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	questBefore, ok := t.project.Quest(params.QuestID)
	if !ok {
		return core.Failuref("Quest not found: %s", params.QuestID), nil
	}
	sceneBefore, i, ok := t.findNPC(params.NPCID)
	if !ok {
		return core.Failuref("NPC not found: %s", params.NPCID), nil
	}
	if params.DialogID != "" {
		if _, exists := t.project.Dialog(params.DialogID); !exists {
			return core.Failuref("Dialog not found: %s", params.DialogID), nil
		}
	}

	questAfter := questBefore.Clone()
	questAfter.Giver = params.NPCID
	questAfter.IntroDialog = params.DialogID
	changes := []core.Command{t.project.QuestChange(&questBefore, &questAfter, "")}
	if params.DialogID != "" {
		sceneAfter := sceneBefore.Clone()
		sceneAfter.Actors[i].DialogID = params.DialogID
		changes = append(changes, t.project.SceneChange(&sceneBefore, &sceneAfter, ""))
	}

	desc := fmt.Sprintf("Link quest %s to %s", params.QuestID, params.NPCID)
	cmd, err := apply(t.project, editor.Batch(desc, changes...))
	if err != nil {
		return core.ToolResult{}, err
	}
	msg := fmt.Sprintf("Quest '%s' linked to NPC '%s'", questBefore.Title, params.NPCID)
	if params.DialogID != "" {
		msg += " with dialog '" + params.DialogID + "'"
	}
	return core.OKWithData(msg, map[string]any{
		"quest_id":  params.QuestID,
		"npc_id":    params.NPCID,
		"scene_id":  sceneBefore.ID,
		"dialog_id": params.DialogID,
	}).WithCommand(cmd), nil
}
