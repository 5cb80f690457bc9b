package tools

import (
	"fmt"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// EndOfDialog is the next-node id that closes a conversation.
const EndOfDialog = -1

// ListDialogsTool lists every dialog.
type ListDialogsTool struct{ base }

// NewListDialogsTool creates a dialog listing tool.
func NewListDialogsTool(p *editor.Project) *ListDialogsTool {
	return &ListDialogsTool{base{p}}
}

// Name returns the tool name
func (t *ListDialogsTool) Name() string { return "list_dialogs" }

// Description returns the tool description
func (t *ListDialogsTool) Description() string { return "List all dialogs in the game" }

// Category returns the tool category
func (t *ListDialogsTool) Category() string { return CategoryDialogs }

// Parameters returns the tool parameter schema
func (t *ListDialogsTool) Parameters() map[string]any { return object(nil) }

// Execute lists the dialogs
func (t *ListDialogsTool) Execute(args map[string]any) (core.ToolResult, error) {
	dialogs := t.project.Dialogs()
	list := make([]map[string]any, 0, len(dialogs))
	for _, d := range dialogs {
		list = append(list, map[string]any{
			"id":         d.ID,
			"npc_name":   d.NPCName,
			"node_count": len(d.Nodes),
		})
	}
	return core.OKWithData(fmt.Sprintf("Found %d dialogs", len(list)), map[string]any{
		"count":   len(list),
		"dialogs": list,
	}), nil
}

// GetDialogTool returns one dialog with all nodes.
type GetDialogTool struct{ base }

// NewGetDialogTool creates a dialog lookup tool.
func NewGetDialogTool(p *editor.Project) *GetDialogTool {
	return &GetDialogTool{base{p}}
}

// Name returns the tool name
func (t *GetDialogTool) Name() string { return "get_dialog" }

// Description returns the tool description
func (t *GetDialogTool) Description() string {
	return "Get detailed information about a specific dialog including all nodes"
}

// Category returns the tool category
func (t *GetDialogTool) Category() string { return CategoryDialogs }

// Parameters returns the tool parameter schema
func (t *GetDialogTool) Parameters() map[string]any {
	return object(map[string]any{
		"dialog_id": str("ID of the dialog to get"),
	}, "dialog_id")
}

// Execute looks the dialog up
func (t *GetDialogTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		DialogID string `json:"dialog_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	d, ok := t.project.Dialog(params.DialogID)
	if !ok {
		return core.Failuref("Dialog not found: %s", params.DialogID), nil
	}
	return core.OKWithData(fmt.Sprintf("Dialog '%s' has %d nodes", d.ID, len(d.Nodes)), d), nil
}

// CreateDialogTool starts a new dialog for an NPC.
type CreateDialogTool struct{ base }

// NewCreateDialogTool creates a dialog creation tool.
func NewCreateDialogTool(p *editor.Project) *CreateDialogTool {
	return &CreateDialogTool{base{p}}
}

// Name returns the tool name
func (t *CreateDialogTool) Name() string { return "create_dialog" }

// Description returns the tool description
func (t *CreateDialogTool) Description() string { return "Create a new dialog for an NPC" }

// Category returns the tool category
func (t *CreateDialogTool) Category() string { return CategoryDialogs }

// RequiresConfirmation returns true
func (t *CreateDialogTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateDialogTool) Parameters() map[string]any {
	return object(map[string]any{
		"id":           str("Unique dialog ID (e.g., 'bartender_intro')"),
		"npc_name":     str("Name of the NPC speaking"),
		"initial_text": str("The first line of dialog"),
	}, "id", "npc_name", "initial_text")
}

// Execute creates the dialog with its opening node
func (t *CreateDialogTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ID          string `json:"id"`
		NPCName     string `json:"npc_name"`
		InitialText string `json:"initial_text"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.ID == "" || params.NPCName == "" || params.InitialText == "" {
		return core.Failure("id, npc_name, and initial_text are required"), nil
	}
	if _, exists := t.project.Dialog(params.ID); exists {
		return core.Failuref("Dialog with ID '%s' already exists", params.ID), nil
	}

	d := editor.Dialog{
		ID:          params.ID,
		NPCName:     params.NPCName,
		StartNodeID: 0,
		Nodes: []editor.DialogNode{{
			ID:         0,
			Speaker:    params.NPCName,
			Text:       params.InitialText,
			NextNodeID: EndOfDialog,
		}},
	}
	cmd, err := apply(t.project, t.project.DialogChange(nil, &d, "Create dialog "+d.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData("Created dialog '"+d.ID+"'", map[string]any{
		"id":           d.ID,
		"npc_name":     d.NPCName,
		"initial_node": map[string]any{"id": 0, "text": params.InitialText},
	}).WithCommand(cmd), nil
}

// AddDialogNodeTool appends a node to a dialog.
type AddDialogNodeTool struct{ base }

// NewAddDialogNodeTool creates a dialog node tool.
func NewAddDialogNodeTool(p *editor.Project) *AddDialogNodeTool {
	return &AddDialogNodeTool{base{p}}
}

// Name returns the tool name
func (t *AddDialogNodeTool) Name() string { return "add_dialog_node" }

// Description returns the tool description
func (t *AddDialogNodeTool) Description() string { return "Add a new node to an existing dialog" }

// Category returns the tool category
func (t *AddDialogNodeTool) Category() string { return CategoryDialogs }

// Parameters returns the tool parameter schema
func (t *AddDialogNodeTool) Parameters() map[string]any {
	choices := prop("array", "Player response choices")
	choices["items"] = object(map[string]any{
		"text":         map[string]any{"type": "string"},
		"next_node_id": map[string]any{"type": "integer"},
		"tone":         map[string]any{"type": "string"},
	})
	return object(map[string]any{
		"dialog_id":    str("ID of the dialog to add node to"),
		"speaker":      str("Who is speaking (NPC name or 'Player')"),
		"text":         str("The dialog text"),
		"next_node_id": integer("ID of the next node (-1 to end dialog)"),
		"choices":      choices,
	}, "dialog_id", "speaker", "text")
}

// Execute adds the node
func (t *AddDialogNodeTool) Execute(args map[string]any) (core.ToolResult, error) {
	type choiceParams struct {
		Text       string `json:"text"`
		NextNodeID *int   `json:"next_node_id"`
		Tone       string `json:"tone"`
	}
	var params struct {
		DialogID   string         `json:"dialog_id"`
		Speaker    string         `json:"speaker"`
		Text       string         `json:"text"`
		NextNodeID *int           `json:"next_node_id"`
		Choices    []choiceParams `json:"choices"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.DialogID == "" || params.Speaker == "" || params.Text == "" {
		return core.Failure("dialog_id, speaker, and text are required"), nil
	}
	before, ok := t.project.Dialog(params.DialogID)
	if !ok {
		return core.Failuref("Dialog not found: %s", params.DialogID), nil
	}

	node := editor.DialogNode{
		ID:         before.NextNodeID(),
		Speaker:    params.Speaker,
		Text:       params.Text,
		NextNodeID: EndOfDialog,
	}
	if params.NextNodeID != nil {
		node.NextNodeID = *params.NextNodeID
	}
	for _, c := range params.Choices {
		choice := editor.DialogChoice{Text: c.Text, NextNodeID: EndOfDialog, Tone: c.Tone}
		if c.NextNodeID != nil {
			choice.NextNodeID = *c.NextNodeID
		}
		if choice.Tone == "" {
			choice.Tone = "neutral"
		}
		node.Choices = append(node.Choices, choice)
	}

	after := before.Clone()
	after.Nodes = append(after.Nodes, node)
	cmd, err := apply(t.project, t.project.DialogChange(&before, &after, fmt.Sprintf("Add node %d to dialog %s", node.ID, before.ID)))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Added node %d to dialog", node.ID), map[string]any{
		"dialog_id": before.ID,
		"node":      map[string]any{"id": node.ID, "speaker": node.Speaker, "text": node.Text},
	}).WithCommand(cmd), nil
}
